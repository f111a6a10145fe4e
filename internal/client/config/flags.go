package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// parseFlags overlays cfg with command-line flags.
//
//	-a string   base URL of the backend REST API
//	-i int      session re-check interval in seconds
//	-s string   session database path
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("juiz", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the backend API")
	interval := fs.Int("i", int(cfg.CheckInterval.Seconds()), "session re-check interval (in seconds)")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "path of the session database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(filterArgs(args, "a", "i", "s", "l")); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["i"] {
		cfg.CheckInterval = time.Duration(*interval) * time.Second
	}
	return nil
}
