package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the study timer
// service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	WorkDuration   time.Duration
	BreakDuration  time.Duration
	TriggerHour    int
	TriggerPoll    time.Duration
	ContentBaseURL string
	ContentAPIKey  string
	ContentTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// supplied values; every invalid entry is reported in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:zenscholar.db?_foreign_keys=on",
		WorkDuration:   25 * time.Minute,
		BreakDuration:  5 * time.Minute,
		TriggerHour:    12,
		TriggerPoll:    time.Minute,
		ContentTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ZENSCHOLAR_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ZENSCHOLAR_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ZENSCHOLAR_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if value := strings.TrimSpace(os.Getenv("ZENSCHOLAR_WORK_DURATION")); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			invalid = append(invalid, "ZENSCHOLAR_WORK_DURATION")
		} else {
			cfg.WorkDuration = d
		}
	}

	if value := strings.TrimSpace(os.Getenv("ZENSCHOLAR_BREAK_DURATION")); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			invalid = append(invalid, "ZENSCHOLAR_BREAK_DURATION")
		} else {
			cfg.BreakDuration = d
		}
	}

	if value := strings.TrimSpace(os.Getenv("ZENSCHOLAR_TRIGGER_HOUR")); value != "" {
		hour, err := strconv.Atoi(value)
		if err != nil || hour < 0 || hour > 23 {
			invalid = append(invalid, "ZENSCHOLAR_TRIGGER_HOUR")
		} else {
			cfg.TriggerHour = hour
		}
	}

	if value := strings.TrimSpace(os.Getenv("ZENSCHOLAR_TRIGGER_POLL")); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			invalid = append(invalid, "ZENSCHOLAR_TRIGGER_POLL")
		} else {
			cfg.TriggerPoll = d
		}
	}

	if base := strings.TrimSpace(os.Getenv("ZENSCHOLAR_CONTENT_BASE_URL")); base != "" {
		cfg.ContentBaseURL = base
	}

	if key := strings.TrimSpace(os.Getenv("ZENSCHOLAR_CONTENT_API_KEY")); key != "" {
		cfg.ContentAPIKey = key
	}

	if value := strings.TrimSpace(os.Getenv("ZENSCHOLAR_CONTENT_TIMEOUT")); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			invalid = append(invalid, "ZENSCHOLAR_CONTENT_TIMEOUT")
		} else {
			cfg.ContentTimeout = d
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
