// Package config centralises configuration parsing for the roster service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures runtime configuration values for the roster binaries.
type Config struct {
	HTTPAddress       string        `env:"HTTP_ADDRESS"            envDefault:":8000"`
	SeedPath          string        `env:"ROSTER_SEED_PATH"`
	StaticDir         string        `env:"ROSTER_STATIC_DIR"`
	EnforceCapacity   bool          `env:"ROSTER_ENFORCE_CAPACITY" envDefault:"false"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN"     envDefault:"*"`
	LogLevel          string        `env:"LOG_LEVEL"               envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT"              envDefault:"text"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"        envDefault:"15s"`

	KafkaBrokers       []string      `env:"KAFKA_BROKERS"        envSeparator:","`
	EventsTopic        string        `env:"ROSTER_EVENTS_TOPIC"  envDefault:"roster_events"`
	SchemaRegistryURL  string        `env:"SCHEMA_REGISTRY_URL"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE"    envDefault:"25"`
	OutboxMaxPending   int           `env:"OUTBOX_MAX_PENDING"   envDefault:"1000"`
	DLQPollInterval    time.Duration `env:"DLQ_POLL_INTERVAL"    envDefault:"30s"`
	DLQMaxRetries      int           `env:"DLQ_MAX_RETRIES"      envDefault:"5"`
	DLQBaseDelay       time.Duration `env:"DLQ_BASE_DELAY"       envDefault:"1m"`

	ConsumerGroupID string `env:"CONSUMER_GROUP_ID" envDefault:"roster-audit"`
	MetricsAddress  string `env:"METRICS_ADDRESS"   envDefault:":9102"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = trimAll(cfg.KafkaBrokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the binaries cannot run with.
func (c Config) Validate() error {
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	if c.OutboxMaxPending <= 0 {
		return fmt.Errorf("OUTBOX_MAX_PENDING must be positive, got %d", c.OutboxMaxPending)
	}
	if c.OutboxPollInterval <= 0 || c.DLQPollInterval <= 0 {
		return errors.New("poll intervals must be positive")
	}
	if c.DLQMaxRetries < 0 {
		return fmt.Errorf("DLQ_MAX_RETRIES must not be negative, got %d", c.DLQMaxRetries)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// EventsEnabled reports whether a Kafka cluster is configured.
func (c Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
