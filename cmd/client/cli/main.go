package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/edusync/edusync-client/internal/client/cli"
	"github.com/edusync/edusync-client/internal/client/config"
	"github.com/edusync/edusync-client/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, cfg.LogLevel)

	app, closeFn, err := cli.NewAppFromConfig(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn(ctx, "shutdown", "err", err)
		}
	}()

	app.Run(ctx)
}
