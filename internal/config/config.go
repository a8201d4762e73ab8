// Package config defines the configuration structures for the ShelfSwap
// valuation and analytics engine. No I/O or parsing logic lives here, only
// plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shelfswap/shelfswap/internal/infrastructure/database/postgres"
	"github.com/shelfswap/shelfswap/internal/infrastructure/database/redis"
	"github.com/shelfswap/shelfswap/internal/infrastructure/messaging/kafka"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	appraisal "github.com/shelfswap/shelfswap/internal/intelligence/appraisal_gpt"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig extends the connection parameters with the migrations
// location applied at startup.
type DatabaseConfig struct {
	postgres.Config `mapstructure:",squash"`

	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig extends the connection parameters with cache namespacing. The
// engine runs without Redis when disabled; derived views are then computed
// on every request.
type RedisConfig struct {
	redis.Config `mapstructure:",squash"`

	Enabled   bool   `mapstructure:"enabled"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// KafkaConfig extends the producer parameters with an enable switch. A
// disabled producer degrades revaluation announcements to log entries.
type KafkaConfig struct {
	kafka.ProducerConfig `mapstructure:",squash"`

	Enabled bool `mapstructure:"enabled"`
}

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// Config is the root configuration for the engine.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Database  DatabaseConfig    `mapstructure:"database"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Kafka     KafkaConfig       `mapstructure:"kafka"`
	Appraisal appraisal.Config  `mapstructure:"appraisal"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Log       logging.LogConfig `mapstructure:"log"`
}

// Validate checks cross-field consistency. Defaults must be applied first.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q must be debug, release, or test", c.Server.Mode)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if err := c.Appraisal.Validate(); err != nil {
		return fmt.Errorf("appraisal: %w", err)
	}
	return nil
}
