// Package storage is the persistent store adapter: a namespaced, JSON-encoded
// view over a raw kv.Repository.
//
// Reads never fail loudly. An unreadable backend or a corrupt payload reads
// as "absent", and the corrupt entry is removed. Writes report a
// common.ErrStorage-wrapped error that callers log as a warning; their
// in-memory state remains authoritative for the session.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edusync/edusync-client/internal/client/repositories/kv"
	"github.com/edusync/edusync-client/internal/common"
	"github.com/edusync/edusync-client/internal/logging"
)

type Store struct {
	repo kv.Repository
	log  logging.Logger
}

func New(repo kv.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log.With("component", "storage")}
}

// Get decodes the entry name of scope into dest and reports whether it was
// present and valid.
func (s *Store) Get(ctx context.Context, scope, name string, dest any) bool {
	key := Key(scope, name)

	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "storage read failed", "key", key, "err", err)
		return false
	}
	if raw == nil {
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		s.log.Warn(ctx, "corrupt entry cleared", "key", key, "err", err)
		if err := s.repo.Delete(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to clear corrupt entry", "key", key, "err", err)
		}
		return false
	}
	return true
}

// Set encodes value and writes it under name in scope.
func (s *Store) Set(ctx context.Context, scope, name string, value any) error {
	key := Key(scope, name)

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", common.ErrStorage, key, err)
	}
	if err := s.repo.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

// Remove deletes the entry name of scope.
func (s *Store) Remove(ctx context.Context, scope, name string) error {
	return s.Clear(ctx, scope, name)
}

// Clear deletes the named entries of scope. With no names it deletes every
// entry of a non-global scope.
func (s *Store) Clear(ctx context.Context, scope string, names ...string) error {
	if len(names) == 0 && scope != Global {
		var err error
		if names, err = s.Names(ctx, scope); err != nil {
			return err
		}
	}
	if len(names) == 0 {
		return nil
	}

	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, Key(scope, n))
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

// Names lists the collection names stored for a non-global scope.
func (s *Store) Names(ctx context.Context, scope string) ([]string, error) {
	prefix := ScopePrefix(scope)
	m, err := s.repo.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k[len(prefix):])
	}
	return names, nil
}
