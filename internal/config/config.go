// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the server.
type Config struct {
	// Addr is the listen address for the HTTP API.
	Addr string `env:"ADDR" envDefault:":8080"`

	// DataDir is where the snapshot files live.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// ReminderSchedule is the cron expression for the due-date check.
	ReminderSchedule string `env:"REMINDER_SCHEDULE" envDefault:"0 9 * * *"`

	// ReminderHorizonDays is how far ahead the due-date check looks.
	ReminderHorizonDays int `env:"REMINDER_HORIZON_DAYS" envDefault:"7"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
