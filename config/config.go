// Package config loads vacationd configuration from a yaml file and the
// environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Holidays HolidaysConfig `mapstructure:"holidays"`
	Google   GoogleConfig   `mapstructure:"google"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DefaultsConfig holds values applied to new users.
type DefaultsConfig struct {
	Province  string  `mapstructure:"province"`
	Allowance float64 `mapstructure:"allowance"`
}

// HolidaysConfig holds the remote holiday feed settings.
type HolidaysConfig struct {
	FeedBaseURL string `mapstructure:"feed_base_url"` // empty = public Nager.Date
	Country     string `mapstructure:"country"`
}

// GoogleConfig holds Google Calendar sync credentials.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenFile    string `mapstructure:"token_file"` // empty = ~/.vacationd/google_token.json
	CalendarID   string `mapstructure:"calendar_id"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// Load reads configuration from the given file, or from the default search
// paths when path is empty. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("database.path", "vacations.db")
	v.SetDefault("defaults.province", "ON")
	v.SetDefault("defaults.allowance", 20)
	v.SetDefault("holidays.country", "CA")
	v.SetDefault("google.calendar_id", "primary")
	v.SetDefault("log.level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.vacationd")
		v.AddConfigPath("/etc/vacationd")
	}

	v.SetEnvPrefix("VACATIOND")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults + env carry the day.
		// An explicit path that cannot be read is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Defaults.Allowance < 0 {
		return fmt.Errorf("defaults.allowance must not be negative")
	}
	if c.Holidays.Country == "" {
		return fmt.Errorf("holidays.country is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}
