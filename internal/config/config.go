package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultAppURL = "http://localhost:8080"

type Config struct {
	AppEnv         string `env:"APP_ENV" env-default:"dev"`
	HTTPAddr       string `env:"HTTP_ADDR" env-default:":8080"`
	DatabaseURL    string `env:"DATABASE_URL" env-default:"stryve.db"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"migrations"`

	Shopify ShopifyConfig
	Stryve  StryveConfig
	Kafka   KafkaConfig
	Log     LogConfig

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

type ShopifyConfig struct {
	AppURL       string `env:"SHOPIFY_APP_URL" env-default:"http://localhost:8080"`
	APIKey       string `env:"SHOPIFY_API_KEY"`
	APISecret    string `env:"SHOPIFY_API_SECRET"`
	PaymentsURL  string `env:"SHOPIFY_PAYMENTS_API_URL" env-default:"https://api.shopify.com/payments"`
	PaymentToken string `env:"SHOPIFY_PAYMENT_TOKEN"`
}

type StryveConfig struct {
	Timeout time.Duration `env:"STRYVE_TIMEOUT" env-default:"30s"`
}

type KafkaConfig struct {
	Brokers            []string `env:"KAFKA_BROKERS" env-separator:","`
	PaymentEventsTopic string   `env:"KAFKA_PAYMENT_EVENTS_TOPIC" env-default:"stryve.payment-events"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// Load reads the process environment. Callers load .env beforehand if they want one.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	normalize(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) {
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.Shopify.AppURL = strings.TrimRight(strings.TrimSpace(cfg.Shopify.AppURL), "/")
	cfg.Shopify.PaymentsURL = strings.TrimRight(strings.TrimSpace(cfg.Shopify.PaymentsURL), "/")
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	brokers := cfg.Kafka.Brokers[:0]
	for _, b := range cfg.Kafka.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	cfg.Kafka.Brokers = brokers

	origins := cfg.CORSAllowedOrigins[:0]
	for _, o := range cfg.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSAllowedOrigins = origins
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Stryve.Timeout <= 0 {
		return fmt.Errorf("STRYVE_TIMEOUT must be > 0")
	}
	if cfg.Shopify.AppURL == "" {
		return fmt.Errorf("SHOPIFY_APP_URL must not be empty")
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	if len(cfg.Kafka.Brokers) > 0 && strings.TrimSpace(cfg.Kafka.PaymentEventsTopic) == "" {
		return fmt.Errorf("KAFKA_PAYMENT_EVENTS_TOPIC must be set when KAFKA_BROKERS is set")
	}

	if IsProdLike(cfg.AppEnv) {
		if strings.TrimSpace(cfg.Shopify.APISecret) == "" {
			return fmt.Errorf("in prod/release SHOPIFY_API_SECRET must be set")
		}
		if cfg.Shopify.AppURL == defaultAppURL {
			return fmt.Errorf("in prod/release SHOPIFY_APP_URL must be set and not default")
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}
