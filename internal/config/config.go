// Package config loads server configuration from the process environment.
//
// Values come from environment variables (optionally seeded from a .env file
// by the caller), with defaults for everything except the USDA API key.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sakif/calorie-log/internal/nutrition/usda"
	"github.com/sakif/calorie-log/internal/service"
)

// Config holds every setting the server needs.
type Config struct {
	Port        int
	DBPath      string
	TemplateDir string
	StaticDir   string

	USDAAPIKey   string
	USDABaseURL  string
	USDAPageSize int
	USDATimeout  time.Duration

	// UserID owns every logged entry. The app has exactly one user.
	UserID           int64
	FallbackCalories int
	Location         *time.Location

	LogLevel  string
	LogFormat string
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8000)
	v.SetDefault("db_path", "data/calories.db")
	v.SetDefault("template_dir", "web/templates")
	v.SetDefault("static_dir", "web/static")
	v.SetDefault("usda_api_key", "")
	v.SetDefault("usda_base_url", usda.DefaultBaseURL)
	v.SetDefault("usda_page_size", usda.DefaultConfig().PageSize)
	v.SetDefault("usda_timeout", usda.DefaultConfig().Timeout)
	v.SetDefault("user_id", service.DefaultUserID)
	v.SetDefault("fallback_calories", service.DefaultFallbackCalories)
	v.SetDefault("tz_name", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// PORT, DB_PATH, USDA_API_KEY, ... map onto the keys above.
	v.AutomaticEnv()

	loc, err := time.LoadLocation(v.GetString("tz_name"))
	if err != nil {
		return nil, fmt.Errorf("config: TZ_NAME: %w", err)
	}

	cfg := &Config{
		Port:             v.GetInt("port"),
		DBPath:           v.GetString("db_path"),
		TemplateDir:      v.GetString("template_dir"),
		StaticDir:        v.GetString("static_dir"),
		USDAAPIKey:       v.GetString("usda_api_key"),
		USDABaseURL:      v.GetString("usda_base_url"),
		USDAPageSize:     v.GetInt("usda_page_size"),
		USDATimeout:      v.GetDuration("usda_timeout"),
		UserID:           v.GetInt64("user_id"),
		FallbackCalories: v.GetInt("fallback_calories"),
		Location:         loc,
		LogLevel:         strings.ToLower(v.GetString("log_level")),
		LogFormat:        strings.ToLower(v.GetString("log_format")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("config: PORT must be between 1 and 65535, got %d", c.Port)
	case c.DBPath == "":
		return fmt.Errorf("config: DB_PATH must not be empty")
	case c.UserID <= 0:
		return fmt.Errorf("config: USER_ID must be positive, got %d", c.UserID)
	case c.FallbackCalories < 0:
		return fmt.Errorf("config: FALLBACK_CALORIES must not be negative, got %d", c.FallbackCalories)
	case c.USDAPageSize <= 0:
		return fmt.Errorf("config: USDA_PAGE_SIZE must be positive, got %d", c.USDAPageSize)
	case c.USDATimeout <= 0:
		return fmt.Errorf("config: USDA_TIMEOUT must be positive, got %s", c.USDATimeout)
	}
	return nil
}

// USDA returns the nutrition client configuration.
func (c *Config) USDA() usda.Config {
	return usda.Config{
		APIKey:   c.USDAAPIKey,
		BaseURL:  c.USDABaseURL,
		PageSize: c.USDAPageSize,
		Timeout:  c.USDATimeout,
	}
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
