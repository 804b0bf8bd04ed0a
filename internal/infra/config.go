package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"surehub"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"surehub"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"surehub"`

	// Pool sizing; the outbox poller runs with a much smaller pool than
	// the API, so both are overridable per process.
	PGPoolMaxConns int `env:"PG_POOL_MAX_CONNS" envDefault:"16"`
	PGPoolMinConns int `env:"PG_POOL_MIN_CONNS" envDefault:"2"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3200"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Outbox poller
	OutboxPollInterval string `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int    `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// Operable balance projection cache
	ProjectionTTL string `env:"PROJECTION_TTL" envDefault:"5m"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT out of range: %d", c.APIPort)
	}
	if c.PGPoolMaxConns <= 0 || c.PGPoolMinConns < 0 || c.PGPoolMinConns > c.PGPoolMaxConns {
		return fmt.Errorf("invalid pool sizing: min %d, max %d", c.PGPoolMinConns, c.PGPoolMaxConns)
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
