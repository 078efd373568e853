package services

import (
	"context"

	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/client/storage"
)

// SettingsService stores per-identity preferences.
type SettingsService struct {
	Deps
	session *SessionService
}

func NewSettingsService(d Deps, session *SessionService) *SettingsService {
	return &SettingsService{Deps: d.withDefaults("settings"), session: session}
}

// Load returns the stored settings, or the defaults.
func (s *SettingsService) Load(ctx context.Context) models.Settings {
	st := models.DefaultSettings()
	if !s.Store.Get(ctx, s.session.Scope(), storage.NameSettings, &st) {
		return models.DefaultSettings()
	}
	return st
}

// Save validates and stores st. Unlike cache writes, a storage failure is
// returned: the user asked for the save explicitly.
func (s *SettingsService) Save(ctx context.Context, st models.Settings) error {
	if err := validateStruct(st); err != nil {
		return err
	}
	return s.Store.Set(ctx, s.session.Scope(), storage.NameSettings, st)
}

// Reset restores the defaults.
func (s *SettingsService) Reset(ctx context.Context) error {
	return s.Store.Remove(ctx, s.session.Scope(), storage.NameSettings)
}
