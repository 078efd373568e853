// Package config loads runtime configuration for the EduSync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, if present (joho/godotenv).
//     Variables already set in the environment are not overridden.
//  3. Environment variables prefixed with EDUSYNC_ (caarlos0/env).
//  4. Optional JSON file selected via flags: -c or -config.
//  5. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the portal API
//	-s string   storage backend: sqlite, redis or memory
//	-d string   SQLite DSN (profile database file)
//	-r string   Redis URL
//	-t string   cross-tab transport: redis, local or none
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "300ms" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080",
//	  "storage": "sqlite",
//	  "sqlite_dsn": "edusync.db",
//	  "redis_url": "redis://localhost:6379/0",
//	  "transport": "local",
//	  "search_source": "local",
//	  "search_debounce": "300ms",
//	  "request_timeout": "30s",
//	  "log_level": "info"
//	}
package config
