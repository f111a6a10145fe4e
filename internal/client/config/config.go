package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the juiz CLI.
type Config struct {
	BaseURL        string        `env:"BASE_URL"`
	CheckInterval  time.Duration `env:"CHECK_INTERVAL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	StorePath      string        `env:"STORE_PATH"`
	StoreKeyFile   string        `env:"STORE_KEY_FILE"`
	RedisURL       string        `env:"REDIS_URL"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8000"
	c.CheckInterval = 5 * time.Minute
	c.RequestTimeout = 10 * time.Second
	c.StorePath = defaultStorePath()
	c.StoreKeyFile = ""
	c.RedisURL = ""
	c.LogLevel = "warn"
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "juizlab.db"
	}
	return filepath.Join(dir, "juizlab", "session.db")
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base url %q must be an absolute http(s) URL", c.BaseURL)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", c.CheckInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.StorePath == "" {
		return fmt.Errorf("store path must not be empty")
	}
	return nil
}

// LoadConfig constructs a Config from os.Args and the process environment.
// Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], nil)
}

func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
