package config

import (
	"fmt"
	"time"

	"github.com/edusync/edusync-client/internal/client/storage"
)

// Cross-tab transports.
const (
	TransportRedis = "redis"
	TransportLocal = "local"
	TransportNone  = "none"
)

// Search candidate sources.
const (
	SearchLocal  = "local"
	SearchRemote = "remote"
)

// Config holds runtime settings for the EduSync client.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL"`
	Storage        string        `env:"STORAGE"`
	SQLiteDSN      string        `env:"SQLITE_DSN"`
	RedisURL       string        `env:"REDIS_URL"`
	Transport      string        `env:"TRANSPORT"`
	SearchSource   string        `env:"SEARCH_SOURCE"`
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.Storage = storage.BackendSQLite
	c.SQLiteDSN = "edusync.db"
	c.RedisURL = "redis://localhost:6379/0"
	c.Transport = TransportLocal
	c.SearchSource = SearchLocal
	c.SearchDebounce = 300 * time.Millisecond
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// Validate rejects unknown enum values and non-positive durations.
func (c *Config) Validate() error {
	switch c.Storage {
	case storage.BackendSQLite, storage.BackendRedis, storage.BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	switch c.Transport {
	case TransportRedis, TransportLocal, TransportNone:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	switch c.SearchSource {
	case SearchLocal, SearchRemote:
	default:
		return fmt.Errorf("unknown search source %q", c.SearchSource)
	}
	if c.SearchDebounce <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("durations must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, ".env")
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
