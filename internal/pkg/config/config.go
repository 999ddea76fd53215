// Package config loads storefront settings from defaults, an optional config
// file, a .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "STOREFRONT"

// Config is the full process configuration.
type Config struct {
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`

	HTTP struct {
		Addr            string        `mapstructure:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Metrics struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"metrics"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Otel struct {
		Enabled     bool    `mapstructure:"enabled"`
		Endpoint    string  `mapstructure:"endpoint"`
		ServiceName string  `mapstructure:"service_name"`
		SampleRatio float64 `mapstructure:"sample_ratio"`
	} `mapstructure:"otel"`

	Store struct {
		// Driver is "mongo" or "memory".
		Driver string `mapstructure:"driver"`
	} `mapstructure:"store"`

	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`

	Redis struct {
		Addr string `mapstructure:"addr"`
		// CartTTL of zero keeps carts until they are cleared.
		CartTTL time.Duration `mapstructure:"cart_ttl"`
	} `mapstructure:"redis"`

	SQLite struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"sqlite"`

	Stripe struct {
		SecretKey     string `mapstructure:"secret_key"`
		WebhookSecret string `mapstructure:"webhook_secret"`
	} `mapstructure:"stripe"`

	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		APIKey    string `mapstructure:"api_key"`
		APISecret string `mapstructure:"api_secret"`
		Folder    string `mapstructure:"folder"`
	} `mapstructure:"cloudinary"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`

	Auth struct {
		SessionSecret string        `mapstructure:"session_secret"`
		SessionTTL    time.Duration `mapstructure:"session_ttl"`
		SecureCookie  bool          `mapstructure:"secure_cookie"`
	} `mapstructure:"auth"`

	Checkout struct {
		Currency      string  `mapstructure:"currency"`
		ShippingPrice float64 `mapstructure:"shipping_price"`
		TaxRate       float64 `mapstructure:"tax_rate"`
	} `mapstructure:"checkout"`
}

// legacyEnv maps config keys to the environment variable names the
// storefront has historically been deployed with.
var legacyEnv = map[string]string{
	"base_url":              "NEXTAUTH_URL",
	"mongo.uri":             "MONGODB_URI",
	"stripe.secret_key":     "STRIPE_SECRET_KEY",
	"stripe.webhook_secret": "STRIPE_WEBHOOK_SECRET",
	"cloudinary.cloud_name": "CLOUDINARY_CLOUD_NAME",
	"cloudinary.api_key":    "CLOUDINARY_API_KEY",
	"cloudinary.api_secret": "CLOUDINARY_API_SECRET",
	"auth.session_secret":   "NEXTAUTH_SECRET",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("metrics.addr", ":9100")
	v.SetDefault("log.level", "info")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.service_name", "storefront")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "shopnow")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.cart_ttl", time.Duration(0))
	v.SetDefault("sqlite.path", "./data/payments.db")
	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.folder", "ecommerce")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "storefront.orders")
	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.session_ttl", 7*24*time.Hour)
	v.SetDefault("auth.secure_cookie", false)
	v.SetDefault("checkout.currency", "usd")
	v.SetDefault("checkout.shipping_price", 10.00)
	v.SetDefault("checkout.tax_rate", 0.07)
}

// Load reads the configuration. configFile may be empty. A .env file in the
// working directory is loaded when present; existing environment variables
// win over it.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envName := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(configFile), "."))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "mongo":
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri (MONGODB_URI) is required when store.driver is mongo"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("store.driver must be mongo or memory, got %q", c.Store.Driver))
	}
	if c.Auth.SessionSecret == "" {
		errs = append(errs, errors.New("auth.session_secret is required"))
	} else if len(c.Auth.SessionSecret) < 32 {
		errs = append(errs, errors.New("auth.session_secret must be at least 32 bytes"))
	}
	if c.Checkout.ShippingPrice < 0 {
		errs = append(errs, errors.New("checkout.shipping_price must not be negative"))
	}
	if c.Checkout.TaxRate < 0 || c.Checkout.TaxRate >= 1 {
		errs = append(errs, errors.New("checkout.tax_rate must be in [0,1)"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// splitList accepts both a YAML list and a single comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
