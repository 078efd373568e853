package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/edusync/edusync-client/internal/client/repositories/kv"
	"github.com/edusync/edusync-client/internal/filex"
)

// Supported durable backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// OpenRepository opens the raw key/value backend named by backend. The
// returned close function releases the underlying connection.
func OpenRepository(ctx context.Context, backend, sqliteDSN, redisURL string) (kv.Repository, func() error, error) {
	switch backend {
	case BackendSQLite:
		if err := filex.EnsureParentDir(sqliteDSN); err != nil {
			return nil, nil, err
		}
		db, err := kv.OpenSQLite(ctx, sqliteDSN)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewSQLiteRepository(db), db.Close, nil

	case BackendRedis:
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return kv.NewRedisRepository(rdb), rdb.Close, nil

	case BackendMemory:
		return kv.NewMemoryRepository(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
