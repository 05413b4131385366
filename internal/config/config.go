// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// UpstreamConfig governs the character API client.
type UpstreamConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	MaxPages  int           `mapstructure:"max_pages"`
}

// FetchConfig controls the CSV export mode.
type FetchConfig struct {
	OutputFile string `mapstructure:"output_file"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SURVIVORS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates a Config from an already initialized
// Viper instance. Callers are expected to have registered defaults first.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SetDefaults registers the default value for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.refresh_interval", "0s")
	v.SetDefault("upstream.base_url", "https://rickandmortyapi.com/api/character")
	v.SetDefault("upstream.timeout", "15s")
	v.SetDefault("upstream.user_agent", "earthsurvivors/1.0")
	v.SetDefault("upstream.max_pages", 100)
	v.SetDefault("fetch.output_file", "characters.csv")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}
	if c.Server.RefreshInterval < 0 {
		return fmt.Errorf("server.refresh_interval must be >= 0")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url must be set")
	}
	if _, err := url.Parse(c.Upstream.BaseURL); err != nil {
		return fmt.Errorf("upstream.base_url is invalid: %w", err)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be > 0")
	}
	if c.Upstream.MaxPages <= 0 {
		return fmt.Errorf("upstream.max_pages must be > 0")
	}
	if c.Fetch.OutputFile == "" {
		return fmt.Errorf("fetch.output_file must be set")
	}
	return nil
}

// ListenAddr formats the HTTP bind address from the configured port.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
