package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI string `env:"DATABASE_URI"`

	// UserID seeds the session; in the packaged app the auth layer sets it.
	UserID string `env:"USER_ID"`

	// Telegram is the optional out-of-band delivery surface.
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	FireInterval    time.Duration `env:"FIRE_INTERVAL" envDefault:"30s"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"60s"`

	// Native projection bounds.
	LookaheadDays int `env:"LOOKAHEAD_DAYS" envDefault:"90"`
	MaxProjected  int `env:"MAX_PROJECTED" envDefault:"60"`

	LoggerLevel  string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
}

func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Lookahead is the native projection window as a duration.
func (c *Config) Lookahead() time.Duration {
	return time.Duration(c.LookaheadDays) * 24 * time.Hour
}
