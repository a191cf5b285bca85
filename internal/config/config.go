// Package config loads and validates service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	JWTSecret          string        `env:"JWT_SECRET"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" default:"30m"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" default:"168h"` // 7 days

	FileStorageRoot string `env:"FILE_STORAGE_ROOT" default:"./uploads"`
	FileBaseURL     string `env:"FILE_BASE_URL" default:"http://localhost:8080/files/content"`

	HeartbeatTimeout     time.Duration `env:"HEARTBEAT_TIMEOUT" default:"60s"`
	ReaperInterval       time.Duration `env:"REAPER_INTERVAL" default:"15s"`
	StreamTicketTTL      time.Duration `env:"STREAM_TICKET_TTL" default:"30s"`
	StatsInterval        time.Duration `env:"STATS_AGGREGATION_INTERVAL" default:"30m"`
	MaxStreamConnections int           `env:"MAX_STREAM_CONNECTIONS" default:"10000"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"REDIS_URL":    cfg.RedisURL,
		"JWT_SECRET":   cfg.JWTSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(cfg.JWTSecret))
	}

	if cfg.HeartbeatTimeout <= cfg.ReaperInterval {
		return fmt.Errorf("HEARTBEAT_TIMEOUT (%v) must exceed REAPER_INTERVAL (%v)", cfg.HeartbeatTimeout, cfg.ReaperInterval)
	}

	return nil
}
