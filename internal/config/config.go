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

	"github.com/alecrj/nutrition/internal/logging"
)

const (
	DefaultModel   = "claude-sonnet-4-20250514"
	DefaultTimeout = 30 * time.Second
	DefaultPort    = "8080"
)

type Config struct {
	APIKey   string
	ProxyURL string
	Model    string
	Timeout  time.Duration
	Port     string
	Log      logging.Config

	timeoutFromEnv bool
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		APIKey:   strings.TrimSpace(os.Getenv("CLAUDE_API_KEY")),
		ProxyURL: strings.TrimSpace(os.Getenv("MEALCOACH_PROXY_URL")),
		Model:    getEnv("MEALCOACH_MODEL", ""),
		Timeout:  DefaultTimeout,
		Port:     getEnv("PORT", DefaultPort),
		Log:      logging.DefaultConfig(),
	}
	if raw := strings.TrimSpace(os.Getenv("MEALCOACH_TIMEOUT")); raw != "" {
		d, err := ParseTimeout(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Timeout = d
		cfg.timeoutFromEnv = true
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		cfg.Log.Level = logging.Level(v)
	}
	if v := getEnv("LOG_FORMAT", ""); v != "" {
		cfg.Log.Format = v
	}
	if v := getEnv("LOG_OUTPUT", ""); v != "" {
		cfg.Log.Output = v
	}
	return cfg, nil
}

// ParseTimeout accepts a Go duration ("45s") or a bare number of seconds.
func ParseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("MEALCOACH_TIMEOUT must be > 0")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid MEALCOACH_TIMEOUT %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("MEALCOACH_TIMEOUT must be > 0")
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// ApplyStored fills values the environment left unset from settings saved
// with "config set". The environment always wins.
func (c *Config) ApplyStored(stored map[string]string) error {
	if c.ProxyURL == "" {
		c.ProxyURL = strings.TrimSpace(stored["proxy_url"])
	}
	if c.Model == "" {
		c.Model = strings.TrimSpace(stored["model"])
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if raw := strings.TrimSpace(stored["timeout"]); raw != "" && !c.timeoutFromEnv {
		d, err := ParseTimeout(raw)
		if err != nil {
			return err
		}
		c.Timeout = d
	}
	return nil
}
