// Package kv provides the raw durable key/value backends behind the client's
// persistent store: SQLite (the default, one file per profile), Redis
// (shared between processes on several hosts) and an in-memory map.
//
// Every backend stores opaque bytes under fully-qualified keys; namespacing
// and JSON encoding are the job of internal/client/storage.
//
// Contract
//
//   - Get returns (nil, nil) when the key is absent.
//   - Set upserts.
//   - Delete is idempotent and accepts several keys.
//   - List returns every pair whose key starts with prefix.
//
// Implementations are safe for concurrent use.
package kv
