package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const envPrefix = "EDUSYNC_"

// parseEnv overlays Config with EDUSYNC_* environment variables, after
// loading dotenv (if the file exists). Unset variables leave fields alone.
// Panics on a malformed dotenv file or value.
func parseEnv(cfg *Config, dotenv string) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
