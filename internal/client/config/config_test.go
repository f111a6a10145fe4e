package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8000", c.BaseURL)
	assert.Equal(t, 5*time.Minute, c.CheckInterval)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.NotEmpty(t, c.StorePath)
	assert.Equal(t, "warn", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestLoad_UsesDefaultsWithoutSources(t *testing.T) {
	cfg, err := load(nil, map[string]string{})
	require.NoError(t, err)

	want := defaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"base_url":       "http://json.example:8000",
		"check_interval": "2m",
		"store_path":     "/tmp/json.db",
		"log_level":      "info",
	})
	environ := map[string]string{
		"JUIZ_BASE_URL":        "https://env.example",
		"JUIZ_REQUEST_TIMEOUT": "3s",
		"JUIZ_REDIS_URL":       "redis://127.0.0.1:6379/1",
	}
	args := []string{"-c", path, "-l", "debug", "-i", "30"}

	cfg, err := load(args, environ)
	require.NoError(t, err)

	want := defaults()
	want.BaseURL = "https://env.example"
	want.CheckInterval = 30 * time.Second
	want.RequestTimeout = 3 * time.Second
	want.StorePath = "/tmp/json.db"
	want.RedisURL = "redis://127.0.0.1:6379/1"
	want.LogLevel = "debug"
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Config
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://10.0.0.1:8000", "-i", "10", "-s", "/tmp/s.db", "-l", "error"},
			want: Config{BaseURL: "http://10.0.0.1:8000", CheckInterval: 10 * time.Second, StorePath: "/tmp/s.db", LogLevel: "error"},
		},
		{
			name: "unknown flags ignored",
			args: []string{"-x", "1", "--a=http://h:1", "positional"},
			want: Config{BaseURL: "http://h:1"},
		},
		{
			name:    "incorrect check interval",
			args:    []string{"-i", "abc"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(&tt.want, cfg))
		})
	}
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	cfg := defaults()
	err := parseEnv(&cfg, map[string]string{"JUIZ_CHECK_INTERVAL": "soon"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.BaseURL = "/api" }},
		{"ftp url", func(c *Config) { c.BaseURL = "ftp://host" }},
		{"zero interval", func(c *Config) { c.CheckInterval = 0 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"no store", func(c *Config) { c.StorePath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestFilterArgs(t *testing.T) {
	args := []string{"-c", "conf.json", "-a", "http://h", "--config=x.json", "-v", "-i", "-l"}
	assert.Equal(t, []string{"-c", "conf.json", "--config=x.json"}, filterArgs(args, "c", "config"))
	assert.Equal(t, []string{"-a", "http://h", "-i"}, filterArgs(args, "a", "i"))
	assert.Empty(t, filterArgs(nil, "a"))
}
