package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all console settings.
const envPrefix = "COLOPS"

// newViper builds a pre-configured Viper instance: YAML file type, COLOPS_
// env prefix, automatic env binding, and a key replacer that maps "." → "_"
// so that nested keys like "gateway.base_url" resolve to
// COLOPS_GATEWAY_BASE_URL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// registerKeys declares every configuration key to viper.  Unmarshal only
// visits keys viper already knows about, so without this step COLOPS_* env
// overrides for keys absent from the config file would be silently ignored.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.mode", "server.read_timeout",
		"server.write_timeout", "server.shutdown_timeout",
		"gateway.base_url", "gateway.api_key", "gateway.timeout",
		"redis.addr", "redis.password", "redis.db", "redis.dial_timeout",
		"redis.read_timeout", "redis.write_timeout", "redis.key_prefix",
		"kafka.brokers", "kafka.topic", "kafka.write_timeout", "kafka.batch_timeout",
		"engine.poll_interval", "engine.just_updated_ttl",
		"engine.history_interval", "engine.history_limit",
		"reminders.first_delay_days", "reminders.second_delay_days",
		"reminders.third_delay_days",
		"log.level", "log.format", "log.output_paths",
	} {
		v.SetDefault(key, nil)
	}
}

// Load reads the YAML file at configPath, merges any COLOPS_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from COLOPS_* environment variables,
// with no config file required.  This is the preferred loading strategy for
// containerised deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}
