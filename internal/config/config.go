// Package config loads process configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds everything the process needs to run. All values come from
// environment variables; only the Telegram token, calendar ID and service
// account key have no defaults.
type Config struct {
	TelegramToken     string
	CalendarID        string
	ServiceAccountKey string // raw service-account JSON

	DataDir  string
	HTTPAddr string

	RefreshInterval  time.Duration
	ReminderInterval time.Duration

	// Meetings are stored as UTC instants and displayed in two zones.
	// TimezoneTH is also the operating zone for day/week boundaries.
	TimezoneUA string
	TimezoneTH string

	LocationUA *time.Location
	LocationTH *time.Location
}

// Load reads and validates configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:     strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		CalendarID:        strings.TrimSpace(os.Getenv("GOOGLE_CALENDAR_ID")),
		ServiceAccountKey: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY")),
		DataDir:           envOrDefault("DATA_DIR", "data"),
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		RefreshInterval:   durationEnvOrDefault("REFRESH_INTERVAL", 5*time.Minute),
		ReminderInterval:  durationEnvOrDefault("REMINDER_INTERVAL", time.Minute),
		TimezoneUA:        envOrDefault("TIMEZONE_UA", "Europe/Kiev"),
		TimezoneTH:        envOrDefault("TIMEZONE_TH", "Asia/Bangkok"),
	}

	if cfg.TelegramToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.CalendarID == "" {
		return nil, errors.New("GOOGLE_CALENDAR_ID is required")
	}
	if cfg.ServiceAccountKey == "" {
		return nil, errors.New("GOOGLE_SERVICE_ACCOUNT_KEY is required")
	}
	if cfg.RefreshInterval < time.Minute {
		return nil, errors.New("REFRESH_INTERVAL must be at least one minute")
	}
	if cfg.ReminderInterval < 30*time.Second {
		return nil, errors.New("REMINDER_INTERVAL must be at least 30 seconds")
	}

	var err error
	if cfg.LocationUA, err = time.LoadLocation(cfg.TimezoneUA); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE_UA %q: %w", cfg.TimezoneUA, err)
	}
	if cfg.LocationTH, err = time.LoadLocation(cfg.TimezoneTH); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE_TH %q: %w", cfg.TimezoneTH, err)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func durationEnvOrDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
