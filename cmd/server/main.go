// Package main is the entry point for the calorie log server.
//
// main stays small: it loads configuration, builds the logger, makes sure the
// database directory exists, and hands off to internal/server. All behaviour
// lives in the imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sakif/calorie-log/internal/config"
	"github.com/sakif/calorie-log/internal/server"
)

func main() {
	// A missing .env is normal in production where the environment is set
	// by the process manager.
	envErr := loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if envErr != nil {
		logger.Debug("no .env file loaded", slog.String("error", envErr.Error()))
	}

	if cfg.USDAAPIKey == "" {
		logger.Warn("USDA_API_KEY not set, every lookup will fall back",
			slog.Int("fallback_calories", cfg.FallbackCalories),
		)
	}

	// Relative paths are resolved against the working directory so the
	// logged values point somewhere unambiguous.
	cfg.TemplateDir, _ = filepath.Abs(cfg.TemplateDir)
	cfg.StaticDir, _ = filepath.Abs(cfg.StaticDir)

	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadDotEnv reads .env (or the given files) into the process environment.
// Values from the file win over variables that are already set.
func loadDotEnv(filenames ...string) error {
	return godotenv.Overload(filenames...)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
