package services

import (
	"context"
	"sync"

	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/storage"
	"github.com/edusync/edusync-client/internal/clock"
	"github.com/edusync/edusync-client/internal/logging"
)

// Deps are the collaborators shared by every service of a tab.
type Deps struct {
	Store *storage.Store
	Bus   *events.Bus
	Log   logging.Logger
	Clock clock.Clock

	// Warnings, when set, keeps the last failed local write so the
	// front end can tell the user their changes were not saved.
	Warnings *StorageWarnings
}

// StorageWarnings holds the most recent local storage failure until it is
// taken. A nil *StorageWarnings discards everything.
type StorageWarnings struct {
	mu   sync.Mutex
	last error
}

func (w *StorageWarnings) record(err error) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.last = err
	w.mu.Unlock()
}

// Take returns the last recorded failure and clears it.
func (w *StorageWarnings) Take() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.last
	w.last = nil
	return err
}

func (d Deps) withDefaults(component string) Deps {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	d.Log = d.Log.With("component", component)
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	return d
}

// persist writes value. A failed write is logged and recorded in Warnings;
// in-memory state stays authoritative.
func (d Deps) persist(ctx context.Context, scope, name string, value any) {
	if err := d.Store.Set(ctx, scope, name, value); err != nil {
		d.Log.Warn(ctx, "failed to persist", "scope", scope, "name", name, "err", err)
		d.Warnings.record(err)
	}
}

func (d Deps) forget(ctx context.Context, scope string, names ...string) {
	if err := d.Store.Clear(ctx, scope, names...); err != nil {
		d.Log.Warn(ctx, "failed to clear", "scope", scope, "names", names, "err", err)
		d.Warnings.record(err)
	}
}

func (d Deps) publish(ctx context.Context, topic events.Topic, scope string, payload any) {
	if err := d.Bus.Publish(ctx, topic, scope, payload); err != nil {
		d.Log.Warn(ctx, "publish failed", "topic", topic, "err", err)
	}
}
