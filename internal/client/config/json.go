package config

import (
	"encoding/json"
	"os"

	"github.com/edusync/edusync-client/internal/flagx"
	"github.com/edusync/edusync-client/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// rely on timex.Duration so JSON can give them as "300ms" or nanoseconds.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	Storage        string         `json:"storage"`
	SQLiteDSN      string         `json:"sqlite_dsn"`
	RedisURL       string         `json:"redis_url"`
	Transport      string         `json:"transport"`
	SearchSource   string         `json:"search_source"`
	SearchDebounce timex.Duration `json:"search_debounce"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays Config with the JSON file named by -c/-config. Keys
// missing from the file keep their current values. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := JsonConfig{
		APIBaseURL:     cfg.APIBaseURL,
		Storage:        cfg.Storage,
		SQLiteDSN:      cfg.SQLiteDSN,
		RedisURL:       cfg.RedisURL,
		Transport:      cfg.Transport,
		SearchSource:   cfg.SearchSource,
		SearchDebounce: timex.Duration{Duration: cfg.SearchDebounce},
		RequestTimeout: timex.Duration{Duration: cfg.RequestTimeout},
		LogLevel:       cfg.LogLevel,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.APIBaseURL = jc.APIBaseURL
	cfg.Storage = jc.Storage
	cfg.SQLiteDSN = jc.SQLiteDSN
	cfg.RedisURL = jc.RedisURL
	cfg.Transport = jc.Transport
	cfg.SearchSource = jc.SearchSource
	cfg.SearchDebounce = jc.SearchDebounce.Duration
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.LogLevel = jc.LogLevel
}
