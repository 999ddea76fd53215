package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_STORE_DRIVER", "memory")
	t.Setenv("STOREFRONT_AUTH_SESSION_SECRET", testSecret)
	t.Setenv("STOREFRONT_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "shopnow", cfg.Mongo.Database)
	assert.Equal(t, "usd", cfg.Checkout.Currency)
	assert.InDelta(t, 10.0, cfg.Checkout.ShippingPrice, 1e-9)
	assert.InDelta(t, 0.07, cfg.Checkout.TaxRate, 1e-9)
	assert.Equal(t, "ecommerce", cfg.Cloudinary.Folder)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Zero(t, cfg.Redis.CartTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_legacy")
	t.Setenv("NEXTAUTH_URL", "https://shop.example.com")
	t.Setenv("STOREFRONT_AUTH_SESSION_SECRET", testSecret)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "whsec_legacy", cfg.Stripe.WebhookSecret)
	assert.Equal(t, "https://shop.example.com", cfg.BaseURL)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	content := []byte(`
store:
  driver: memory
auth:
  session_secret: ` + testSecret + `
checkout:
  tax_rate: 0.2
  shipping_price: 4.5
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, cfg.Checkout.TaxRate, 1e-9)
	assert.InDelta(t, 4.5, cfg.Checkout.ShippingPrice, 1e-9)
}

func TestValidateRejectsMissingValues(t *testing.T) {
	t.Setenv("STOREFRONT_STORE_DRIVER", "mongo")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo.uri")
	assert.Contains(t, err.Error(), "auth.session_secret")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STOREFRONT_STORE_DRIVER", "postgres")
	t.Setenv("STOREFRONT_AUTH_SESSION_SECRET", testSecret)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}
