package services

import "github.com/edusync/edusync-client/internal/client/models"

// Event payloads. Each carries whole records so a receiver can apply it
// last-write-wins without reading anything else.

type IdentityChanged struct {
	// Identity is nil after logout.
	Identity *models.Identity `json:"identity,omitempty"`
}

type ResourceChanged struct {
	Resource *models.Resource `json:"resource,omitempty"`
	ID       string           `json:"id,omitempty"`
	// Snapshot replaces the whole list (after a refresh).
	Snapshot []models.Resource `json:"snapshot,omitempty"`
}

type FavoritesChanged struct {
	IDs []string `json:"ids"`
}

type AccessChanged struct {
	Recent  []models.Resource     `json:"recent"`
	History []models.AccessRecord `json:"history"`
}

type AvatarChanged struct {
	Ref models.AvatarRef `json:"ref"`
}

type SearchChanged struct {
	RecentQueries []string `json:"recentQueries"`
}
