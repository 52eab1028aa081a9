package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	mu     sync.Mutex
	active *viper.Viper
)

// Load loads configuration from file and environment variables.
// Environment variables use the GRAMMAR_ prefix, e.g. GRAMMAR_SERVER_PORT.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/grammar-sentinel/")
	v.AddConfigPath("$HOME/.grammar-sentinel/")

	v.SetEnvPrefix("GRAMMAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, GetDefaults())

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	active = v
	mu.Unlock()

	return config, nil
}

func decode(v *viper.Viper) (*Config, error) {
	config := GetDefaults()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// bindDefaults registers every default key so AutomaticEnv can override keys
// that are absent from the config file.
func bindDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("grammar.default_tier", d.Grammar.DefaultTier)
	v.SetDefault("grammar.structural_checks", d.Grammar.StructuralChecks)
	v.SetDefault("grammar.max_text_length", d.Grammar.MaxTextLength)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file.enabled", d.Logging.File.Enabled)
	v.SetDefault("logging.file.path", d.Logging.File.Path)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.default_ttl", d.Cache.DefaultTTL)
	v.SetDefault("cache.key_prefix", d.Cache.KeyPrefix)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.driver", d.History.Driver)
	v.SetDefault("history.dsn", d.History.DSN)
	v.SetDefault("websocket.enabled", d.WebSocket.Enabled)
	v.SetDefault("websocket.username", d.WebSocket.Username)
	v.SetDefault("websocket.password", d.WebSocket.Password)
	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("batch.workers", d.Batch.Workers)
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Grammar.DefaultTier <= 0 {
		return fmt.Errorf("invalid default tier: %d (must be positive)", config.Grammar.DefaultTier)
	}

	if config.Grammar.MaxTextLength < 0 {
		return fmt.Errorf("invalid max text length: %d", config.Grammar.MaxTextLength)
	}

	if config.Logging.Level != "debug" && config.Logging.Level != "info" && config.Logging.Level != "warn" && config.Logging.Level != "error" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	if config.History.Enabled && config.History.Driver != "sqlite" && config.History.Driver != "postgres" {
		return fmt.Errorf("invalid history driver: %s (must be sqlite or postgres)", config.History.Driver)
	}

	if config.RateLimit.Enabled && (config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid rate limit: %.2f/s burst %d", config.RateLimit.RequestsPerSecond, config.RateLimit.Burst)
	}

	if config.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d", config.Batch.Workers)
	}

	return nil
}

// Watch starts watching the configuration file loaded by the last Load call.
// callback receives every valid new configuration; onError receives the
// reason a changed file was rejected.
func Watch(callback func(*Config), onError func(error)) error {
	mu.Lock()
	v := active
	mu.Unlock()
	if v == nil {
		return errors.New("config not loaded")
	}
	if v.ConfigFileUsed() == "" {
		return errors.New("no config file to watch")
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		newConfig, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("%s: %w", e.Name, err))
			}
			return
		}
		callback(newConfig)
	})
	v.WatchConfig()

	return nil
}
