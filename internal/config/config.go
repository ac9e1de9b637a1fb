// Package config reads the client settings from the environment, after
// loading a .env file when one exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL  = "http://localhost:3000"
	DefaultEndpoint = "/api/employees/leads"
	DefaultLogFile  = "leads-debug.log"
)

// Config is everything cmd/leads needs to build a client and a UI.
type Config struct {
	BaseURL  string        // LEADS_BASE_URL
	Endpoint string        // LEADS_ENDPOINT
	Token    string        // LEADS_TOKEN, overrides the saved credentials
	Timeout  time.Duration // LEADS_TIMEOUT, zero means none
	Debug    bool          // LEADS_DEBUG
	Theme    string        // LEADS_THEME
	LogFile  string        // LEADS_LOG_FILE, TUI log destination
}

// Load reads .env files (missing ones are skipped) and then the process
// environment. With no files given it looks for ./.env.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		BaseURL:  strings.TrimRight(orDefault(getenv("LEADS_BASE_URL"), DefaultBaseURL), "/"),
		Endpoint: orDefault(getenv("LEADS_ENDPOINT"), DefaultEndpoint),
		Token:    strings.TrimSpace(getenv("LEADS_TOKEN")),
		Theme:    strings.TrimSpace(getenv("LEADS_THEME")),
		LogFile:  strings.TrimSpace(getenv("LEADS_LOG_FILE")),
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return Config{}, fmt.Errorf("invalid LEADS_BASE_URL %q: want http:// or https://", cfg.BaseURL)
	}

	if v := strings.TrimSpace(getenv("LEADS_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LEADS_TIMEOUT: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("invalid LEADS_TIMEOUT: must not be negative")
		}
		cfg.Timeout = d
	}

	if v := strings.TrimSpace(getenv("LEADS_DEBUG")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LEADS_DEBUG: %w", err)
		}
		cfg.Debug = b
	}

	if cfg.LogFile == "" && cfg.Debug {
		cfg.LogFile = DefaultLogFile
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
