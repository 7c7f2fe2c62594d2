package config

import "time"

// Default values applied to any unset configuration field.  The reminder
// thresholds follow the published collection schedule: first reminder 30 days
// after tracking starts, then 15 days between subsequent stages.
const (
	DefaultServerPort      = 8090
	DefaultServerMode      = "release"
	DefaultGatewayTimeout  = 15 * time.Second
	DefaultPollInterval    = 15 * time.Second
	DefaultJustUpdatedTTL  = 4 * time.Second
	DefaultHistoryInterval = time.Minute
	DefaultHistoryLimit    = 300
	DefaultFirstDelayDays  = 30
	DefaultSecondDelayDays = 15
	DefaultThirdDelayDays  = 15
	DefaultRedisKeyPrefix  = "colops:"
	DefaultKafkaTopic      = "colops.audit"
)

// ApplyDefaults fills every unset field of cfg with its default value.
// Explicitly set zero values for fields where zero is meaningful (reminder
// delays) are left alone only when the section was provided; viper cannot
// distinguish "absent" from "zero" for ints, so zero-day reminder thresholds
// must be configured as such deliberately via SetDefault overrides.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = DefaultGatewayTimeout
	}

	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}

	if cfg.Engine.PollInterval == 0 {
		cfg.Engine.PollInterval = DefaultPollInterval
	}
	if cfg.Engine.JustUpdatedTTL == 0 {
		cfg.Engine.JustUpdatedTTL = DefaultJustUpdatedTTL
	}
	if cfg.Engine.HistoryInterval == 0 {
		cfg.Engine.HistoryInterval = DefaultHistoryInterval
	}
	if cfg.Engine.HistoryLimit == 0 {
		cfg.Engine.HistoryLimit = DefaultHistoryLimit
	}

	if cfg.Reminders.FirstDelayDays == 0 {
		cfg.Reminders.FirstDelayDays = DefaultFirstDelayDays
	}
	if cfg.Reminders.SecondDelayDays == 0 {
		cfg.Reminders.SecondDelayDays = DefaultSecondDelayDays
	}
	if cfg.Reminders.ThirdDelayDays == 0 {
		cfg.Reminders.ThirdDelayDays = DefaultThirdDelayDays
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
