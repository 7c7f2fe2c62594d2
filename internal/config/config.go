// Package config defines all configuration structures for the collections
// operations console.  No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/colops/console/internal/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GatewayConfig holds connection parameters for the remote collections
// gateway (mail/OCR backend).
type GatewayConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds connection parameters for the persistent key/value store
// that mirrors the operating mode and the last-applied match set.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds producer parameters for the audit-trail topic.  An empty
// broker list disables audit publishing entirely.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// EngineConfig holds the reconciliation engine cadence parameters.
type EngineConfig struct {
	// PollInterval is the fixed delay between poll cycles.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// JustUpdatedTTL is how long the transient "just updated" flag stays
	// raised after a new event is merged.
	JustUpdatedTTL time.Duration `mapstructure:"just_updated_ttl"`

	// HistoryInterval is the refresh cadence of the payments-history cache.
	HistoryInterval time.Duration `mapstructure:"history_interval"`

	// HistoryLimit is the maximum number of payments-log entries fetched per
	// refresh.
	HistoryLimit int `mapstructure:"history_limit"`
}

// RemindersConfig holds the escalation stage thresholds, in days.  Each value
// counts from the previous stage's sent timestamp (or from the reminder start
// for the first stage).
type RemindersConfig struct {
	FirstDelayDays  int `mapstructure:"first_delay_days"`
	SecondDelayDays int `mapstructure:"second_delay_days"`
	ThirdDelayDays  int `mapstructure:"third_delay_days"`
}

// Config is the root configuration structure for the console.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Log       logging.Config  `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("config: gateway.base_url is required")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("config: gateway.timeout must be positive, got %s", c.Gateway.Timeout)
	}

	if c.Engine.PollInterval <= 0 {
		return fmt.Errorf("config: engine.poll_interval must be positive, got %s", c.Engine.PollInterval)
	}
	if c.Engine.JustUpdatedTTL <= 0 {
		return fmt.Errorf("config: engine.just_updated_ttl must be positive, got %s", c.Engine.JustUpdatedTTL)
	}
	if c.Engine.HistoryInterval <= 0 {
		return fmt.Errorf("config: engine.history_interval must be positive, got %s", c.Engine.HistoryInterval)
	}
	if c.Engine.HistoryLimit < 1 {
		return fmt.Errorf("config: engine.history_limit must be >= 1, got %d", c.Engine.HistoryLimit)
	}

	if c.Reminders.FirstDelayDays < 0 || c.Reminders.SecondDelayDays < 0 || c.Reminders.ThirdDelayDays < 0 {
		return fmt.Errorf("config: reminders delay days must not be negative")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("config: kafka.topic is required when brokers are configured")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
