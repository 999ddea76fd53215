package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/storefront/internal/pkg/config"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/memory"
	mongostore "github.com/jcmexdev/storefront/internal/storefront/infra/adapters/mongo"
)

// repositories is the persistence selected by store.driver.
type repositories struct {
	products ports.ProductRepository
	orders   ports.OrderRepository
	users    ports.UserRepository
	ping     func(ctx context.Context) error
	close    func(ctx context.Context) error
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Store.Driver {
	case "memory":
		slog.Warn("using in-memory store; data is lost on restart")
		return &repositories{
			products: memory.NewProductRepository(),
			orders:   memory.NewOrderRepository(),
			users:    memory.NewUserRepository(),
			ping:     func(context.Context) error { return nil },
			close:    func(context.Context) error { return nil },
		}, nil
	default:
		store, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		slog.Info("connected to mongo", "database", cfg.Mongo.Database)
		return &repositories{
			products: store.Products(),
			orders:   store.Orders(),
			users:    store.Users(),
			ping:     store.Ping,
			close:    store.Close,
		}, nil
	}
}
