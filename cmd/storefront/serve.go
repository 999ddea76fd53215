package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/paymentlog"
	"github.com/jcmexdev/storefront/internal/paymentlog/sqlite"
	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/config"
	"github.com/jcmexdev/storefront/internal/pkg/metrics"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/services"
	"github.com/jcmexdev/storefront/internal/storefront/core/validation"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/cloudinary"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/kafka"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/stripe"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the metrics listener",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	telemetry.InitLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer := telemetry.ShutdownFunc(telemetry.NoopShutdown)
	if cfg.Otel.Enabled {
		shutdownTracer, err = telemetry.SetupTracer(ctx, telemetry.TracerOptions{
			ServiceName: cfg.Otel.ServiceName,
			Endpoint:    cfg.Otel.Endpoint,
			Environment: cfg.Env,
			SampleRatio: cfg.Otel.SampleRatio,
		})
		if err != nil {
			return err
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			slog.Error("store close error", "error", err)
		}
	}()

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audit log directory: %w", err)
		}
	}
	auditLog, err := sqlite.Open(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer auditLog.Close()
	recorder := paymentlog.NewRecorder(auditLog)

	checks := map[string]httpx.HealthCheck{"store": repos.ping}

	var carts cart.Store = cart.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, "storefront")
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, carts are kept in memory", "addr", cfg.Redis.Addr, "error", err)
		} else {
			carts = cart.NewCacheStore(redisCache, cfg.Redis.CartTTL)
			checks["redis"] = redisCache.Ping
		}
	}

	var publisher ports.EventPublisher = ports.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kp.Close()
		publisher = kp
		slog.Info("publishing order events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	var images ports.ImageHost
	if cfg.Cloudinary.CloudName != "" {
		host, err := cloudinary.NewHost(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			return err
		}
		images = host
	} else {
		slog.Warn("cloudinary not configured, uploads are disabled")
	}

	if cfg.Stripe.WebhookSecret == "" {
		slog.Warn("stripe webhook secret not configured, every webhook will be rejected")
	}

	v := validation.New()
	sessions := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	pricing := entity.Pricing{
		ShippingPrice: decimal.NewFromFloat(cfg.Checkout.ShippingPrice),
		TaxRate:       decimal.NewFromFloat(cfg.Checkout.TaxRate),
		Currency:      cfg.Checkout.Currency,
	}

	handler := httpx.NewHandler(httpx.Deps{
		Catalog: services.NewCatalogService(repos.products, images, v),
		Checkout: services.NewCheckoutService(services.CheckoutDeps{
			Products:  repos.products,
			Orders:    repos.orders,
			Gateway:   stripe.NewGateway(cfg.Stripe.SecretKey),
			Publisher: publisher,
			Recorder:  recorder,
			Validator: v,
			Pricing:   pricing,
			BaseURL:   cfg.BaseURL,
		}),
		Payments:     services.NewPaymentService(repos.orders, repos.products, publisher, recorder),
		Accounts:     services.NewAccountService(repos.users, v),
		Orders:       services.NewOrderQuery(repos.orders),
		Media:        services.NewMediaService(images),
		Verifier:     stripe.NewEventParser(cfg.Stripe.WebhookSecret),
		Sessions:     sessions,
		Carts:        carts,
		SecureCookie: cfg.Auth.SecureCookie,
		Checks:       checks,
	})

	apiServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpx.NewRouter(handler, middlewares.NewAuthenticator(sessions)),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	servers := []*http.Server{apiServer}
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			slog.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	slog.Info("storefront stopped")
	return err
}
