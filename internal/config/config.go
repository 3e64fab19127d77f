// Package config handles configuration loading and management
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the harness configuration loaded from environment variables.
type AppConfig struct {
	LogLevel       string
	PrefixPath     string
	ClickhouseURL  string
	DefaultTimeout time.Duration
	NoColor        bool
}

// Load reads configuration from environment variables and .env file.
func Load() (*AppConfig, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if the file doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &AppConfig{
		LogLevel:      getEnv(EnvLogLevel, DefaultLogLevel),
		PrefixPath:    os.Getenv(EnvPrefixPath),
		ClickhouseURL: os.Getenv(EnvClickhouseURL),
		NoColor:       os.Getenv(EnvNoColor) != "",
	}

	timeout, err := parseTimeout(getEnv(EnvTimeout, ""))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvTimeout, err)
	}
	cfg.DefaultTimeout = timeout

	return cfg, nil
}

func (c *AppConfig) String() string {
	prefixDisplay := c.PrefixPath
	if prefixDisplay == "" {
		prefixDisplay = "(not set)"
	}

	historyDisplay := "(disabled)"
	if c.ClickhouseURL != "" {
		historyDisplay = redactURL(c.ClickhouseURL)
	}

	return fmt.Sprintf(`Current Configuration:
======================
Log Level:         %s
CPS Prefix Path:   %s
History Database:  %s
Default Timeout:   %s
Color Output:      %t`,
		c.LogLevel,
		prefixDisplay,
		historyDisplay,
		c.DefaultTimeout,
		!c.NoColor,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseTimeout accepts a Go duration ("2.5s") or a plain number of seconds ("5").
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTimeout, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		secs, numErr := strconv.ParseFloat(s, 64)
		if numErr != nil {
			return 0, err
		}
		d = time.Duration(secs * float64(time.Second))
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: %s", errNonPositiveTimeout, s)
	}

	return d, nil
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid url)"
	}

	return u.Redacted()
}
