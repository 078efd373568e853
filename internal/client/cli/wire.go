package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/edusync/edusync-client/internal/client/client"
	"github.com/edusync/edusync-client/internal/client/config"
	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/services"
	"github.com/edusync/edusync-client/internal/client/storage"
	"github.com/edusync/edusync-client/internal/logging"
)

// NewAppFromConfig opens the profile store and the cross-tab transport named
// by cfg and builds every service of one tab around them. The returned
// close function releases what was opened, in reverse order.
func NewAppFromConfig(ctx context.Context, cfg *config.Config, log *logging.SlogLogger, in io.Reader, out io.Writer) (*App, func() error, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	repo, closeRepo, err := storage.OpenRepository(ctx, cfg.Storage, cfg.SQLiteDSN, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open profile store: %w", err)
	}
	closers = append(closers, closeRepo)

	var busOpts []events.Option
	switch cfg.Transport {
	case config.TransportRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		closers = append(closers, rdb.Close)
		busOpts = append(busOpts, events.WithTransport(events.NewRedisTransport(rdb, events.DefaultChannel)))
	case config.TransportLocal:
		ps := events.NewLocalPubSub(log.Slog())
		closers = append(closers, ps.Close)
		busOpts = append(busOpts, events.WithTransport(events.NewWatermillTransport(ps, ps, events.DefaultChannel)))
	}

	bus := events.NewBus(log, busOpts...)
	if err := bus.Start(ctx); err != nil {
		_ = closeAll()
		return nil, nil, fmt.Errorf("start event bus: %w", err)
	}
	closers = append(closers, bus.Close)

	api := client.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout)
	warnings := &services.StorageWarnings{}
	d := services.Deps{Store: storage.New(repo, log), Bus: bus, Log: log, Warnings: warnings}

	session := services.NewSessionService(d, api, services.WithAuthorizer(api))
	res := services.NewResourceService(d, session, services.WithResourcesAPI(api))

	var source services.CandidateSource = services.LocalCandidates{Resources: res}
	if cfg.SearchSource == config.SearchRemote {
		source = api
	}

	svc := Services{
		Session:   session,
		Resources: res,
		Search:    services.NewSearchService(d, session, source, services.WithDebounce(cfg.SearchDebounce)),
		Avatar:    services.NewAvatarService(d, session, api, api.BaseURL()),
		Settings:  services.NewSettingsService(d, session),
		Bus:       bus,
		Warnings:  warnings,
	}

	return NewApp(svc, log, in, out), closeAll, nil
}
