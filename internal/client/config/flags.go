package config

import (
	"flag"
	"os"

	"github.com/edusync/edusync-client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Only the flags listed here are looked at (see flagx.FilterArgs), so other
// components can own the rest of os.Args.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d", "-r", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the portal API")
	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "storage backend (sqlite|redis|memory)")
	fs.StringVar(&cfg.SQLiteDSN, "d", cfg.SQLiteDSN, "SQLite DSN")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "Redis URL")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "cross-tab transport (redis|local|none)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
