// Package config loads runtime configuration for the juiz CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Environment variables prefixed with JUIZ_ (see the env tags on Config).
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-i int      session re-check interval (seconds)
//	-s string   path of the local session database
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5m" or integer nanoseconds:
//
//	{
//	  "base_url": "http://127.0.0.1:8000",
//	  "check_interval": "5m",
//	  "request_timeout": "10s",
//	  "store_path": "/home/chef/.config/juizlab/session.db",
//	  "store_key_file": "/home/chef/.config/juizlab/key",
//	  "redis_url": "redis://127.0.0.1:6379/0",
//	  "log_level": "info"
//	}
//
// The check interval bounds how long a credential revoked on the server can
// keep being shown as signed in; it is not a correctness guarantee.
package config
