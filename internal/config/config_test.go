package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "stryve.db", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Second, cfg.Stryve.Timeout)
	assert.Equal(t, "stryve.payment-events", cfg.Kafka.PaymentEventsTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_TrimsAndSplits(t *testing.T) {
	t.Setenv("SHOPIFY_APP_URL", " https://app.example.com/ ")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("LOG_FORMAT", "Console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com", cfg.Shopify.AppURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AppEnv:      "dev",
			DatabaseURL: "stryve.db",
			Shopify:     ShopifyConfig{AppURL: "https://app.example.com", APISecret: "secret"},
			Stryve:      StryveConfig{Timeout: time.Second},
			Log:         LogConfig{Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "DATABASE_URL"},
		{name: "zero timeout", mutate: func(c *Config) { c.Stryve.Timeout = 0 }, wantErr: "STRYVE_TIMEOUT"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "brokers without topic", mutate: func(c *Config) { c.Kafka.Brokers = []string{"k:9092"} }, wantErr: "KAFKA_PAYMENT_EVENTS_TOPIC"},
		{name: "prod without secret", mutate: func(c *Config) { c.AppEnv = "production"; c.Shopify.APISecret = "" }, wantErr: "SHOPIFY_API_SECRET"},
		{name: "prod with default app url", mutate: func(c *Config) { c.AppEnv = "prod"; c.Shopify.AppURL = defaultAppURL }, wantErr: "SHOPIFY_APP_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
