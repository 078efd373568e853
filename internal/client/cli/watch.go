package cli

import (
	"context"

	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/services"
)

// Watch prints a notice whenever another tab changes shared state. The
// returned function stops watching.
func (a *App) Watch() func() {
	topics := []events.Topic{
		events.TopicIdentityChanged,
		events.TopicResourceAdded,
		events.TopicResourceUpdated,
		events.TopicResourceRemoved,
		events.TopicFavoritesUpdated,
		events.TopicAccessUpdated,
		events.TopicAvatarUpdated,
		events.TopicSearchUpdated,
	}

	unsubs := make([]func(), 0, len(topics))
	for _, t := range topics {
		unsubs = append(unsubs, a.svc.Bus.Subscribe(t, a.onEvent))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (a *App) onEvent(ctx context.Context, e events.Event) {
	if !e.Remote {
		return
	}
	a.log.Debug(ctx, "change from another tab", "topic", e.Topic, "origin", e.Origin)

	switch e.Topic {
	case events.TopicIdentityChanged:
		if id, ok := a.svc.Session.Identity(); ok {
			a.printf("\n[other tab] signed in as %s\n", id.Email)
		} else {
			a.println("\n[other tab] signed out")
		}
	case events.TopicResourceAdded, events.TopicResourceUpdated:
		var p services.ResourceChanged
		if err := e.Decode(&p); err == nil && p.Resource != nil {
			a.printf("\n[other tab] %s: %s\n", e.Topic, p.Resource.Title)
			return
		}
		a.printf("\n[other tab] %s\n", e.Topic)
	default:
		a.printf("\n[other tab] %s\n", e.Topic)
	}
}
