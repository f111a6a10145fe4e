package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/juizlab/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// use timex.Duration so they can be written as "5m" or as nanoseconds.
type JsonConfig struct {
	BaseURL        string         `json:"base_url"`
	CheckInterval  timex.Duration `json:"check_interval"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	StorePath      string         `json:"store_path"`
	StoreKeyFile   string         `json:"store_key_file"`
	RedisURL       string         `json:"redis_url"`
	LogLevel       string         `json:"log_level"`
}

// configPath returns the value of -c/-config, or "" when absent.
func configPath(args []string) (string, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var short, long string
	fs.StringVar(&short, "c", "", "path to JSON config")
	fs.StringVar(&long, "config", "", "path to JSON config")
	if err := fs.Parse(filterArgs(args, "c", "config")); err != nil {
		return "", fmt.Errorf("parse config flag: %w", err)
	}
	if long != "" {
		return long, nil
	}
	return short, nil
}

// parseJSON overlays cfg with the non-empty values of the JSON file named
// by -c/-config. Without the flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path, err := configPath(args)
	if err != nil || path == "" {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&cfg.BaseURL, jc.BaseURL)
	setDuration(&cfg.CheckInterval, jc.CheckInterval.Duration)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout.Duration)
	setString(&cfg.StorePath, jc.StorePath)
	setString(&cfg.StoreKeyFile, jc.StoreKeyFile)
	setString(&cfg.RedisURL, jc.RedisURL)
	setString(&cfg.LogLevel, jc.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
