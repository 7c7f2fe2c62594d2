package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Gateway.BaseURL = "http://gateway.local"
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 15*time.Second, cfg.Engine.PollInterval)
	assert.Equal(t, 4*time.Second, cfg.Engine.JustUpdatedTTL)
	assert.Equal(t, time.Minute, cfg.Engine.HistoryInterval)
	assert.Equal(t, 300, cfg.Engine.HistoryLimit)
	assert.Equal(t, 30, cfg.Reminders.FirstDelayDays)
	assert.Equal(t, 15, cfg.Reminders.SecondDelayDays)
	assert.Equal(t, 15, cfg.Reminders.ThirdDelayDays)
	assert.Equal(t, "colops:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "colops.audit", cfg.Kafka.Topic)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"missing gateway url", func(c *Config) { c.Gateway.BaseURL = "" }, "gateway.base_url"},
		{"bad gateway timeout", func(c *Config) { c.Gateway.Timeout = 0 }, "gateway.timeout"},
		{"bad poll interval", func(c *Config) { c.Engine.PollInterval = 0 }, "engine.poll_interval"},
		{"bad just updated ttl", func(c *Config) { c.Engine.JustUpdatedTTL = -time.Second }, "engine.just_updated_ttl"},
		{"negative history interval", func(c *Config) { c.Engine.HistoryInterval = -time.Minute }, "engine.history_interval"},
		{"bad history limit", func(c *Config) { c.Engine.HistoryLimit = 0 }, "engine.history_limit"},
		{"negative reminder delay", func(c *Config) { c.Reminders.SecondDelayDays = -1 }, "reminders"},
		{"kafka brokers without topic", func(c *Config) {
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Kafka.Topic = ""
		}, "kafka.topic"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	yaml := `
server:
  port: 9999
  mode: test
gateway:
  base_url: http://gw.test
engine:
  poll_interval: 5s
reminders:
  first_delay_days: 45
log:
  level: debug
  format: console
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "http://gw.test", cfg.Gateway.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Engine.PollInterval)
	assert.Equal(t, 45, cfg.Reminders.FirstDelayDays)
	// Unset fields still pick up defaults.
	assert.Equal(t, 15, cfg.Reminders.SecondDelayDays)
	assert.Equal(t, DefaultHistoryLimit, cfg.Engine.HistoryLimit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	yaml := `
gateway:
  base_url: ""
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.base_url")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COLOPS_GATEWAY_BASE_URL", "http://env.test")
	t.Setenv("COLOPS_SERVER_PORT", "7001")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://env.test", cfg.Gateway.BaseURL)
	assert.Equal(t, 7001, cfg.Server.Port)
}
