package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topic names one kind of state change.
type Topic string

const (
	TopicIdentityChanged  Topic = "identity-changed"
	TopicResourceAdded    Topic = "resource-added"
	TopicResourceUpdated  Topic = "resource-updated"
	TopicResourceRemoved  Topic = "resource-removed"
	TopicFavoritesUpdated Topic = "favorites-updated"
	TopicAccessUpdated    Topic = "access-updated"
	TopicAvatarUpdated    Topic = "avatar-updated"
	TopicSearchUpdated    Topic = "search-updated"
)

// Event is the unit carried by the bus and its transports.
type Event struct {
	ID        string          `json:"id"`
	Topic     Topic           `json:"topic"`
	Scope     string          `json:"scope"`
	Origin    string          `json:"origin"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Published time.Time       `json:"published"`

	// Remote is set on events that arrived from another tab.
	Remote bool `json:"-"`
}

// Decode unmarshals the payload into dest.
func (e Event) Decode(dest any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s: empty payload", e.Topic)
	}
	if err := json.Unmarshal(e.Payload, dest); err != nil {
		return fmt.Errorf("event %s: %w", e.Topic, err)
	}
	return nil
}
