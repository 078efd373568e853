package services

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"
	"sync"

	"github.com/edusync/edusync-client/internal/client/client"
	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/client/storage"
	"github.com/edusync/edusync-client/internal/common"
)

const userPathPrefix = "/api/user/"

var digitsOnly = regexp.MustCompile(`^\d+$`)

type avatarRule struct {
	kind  models.AvatarKind
	match func(v string) bool
	build func(v, base string) string
}

// avatarRules are tried in order; the first match wins.
var avatarRules = []avatarRule{
	{
		kind: models.AvatarAbsoluteURL,
		match: func(v string) bool {
			return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
		},
		build: func(v, _ string) string { return v },
	},
	{
		kind:  models.AvatarServerPath,
		match: func(v string) bool { return strings.HasPrefix(v, userPathPrefix) },
		build: func(v, base string) string { return base + v },
	},
	{
		kind:  models.AvatarIDToken,
		match: digitsOnly.MatchString,
		build: func(v, base string) string { return base + userPathPrefix + v + "/profile-picture" },
	},
	{
		kind:  models.AvatarSuffixPath,
		match: func(v string) bool { return strings.Contains(v, "/profile-picture") },
		build: func(v, base string) string {
			v = strings.TrimPrefix(v, "/")
			if strings.HasPrefix(v, strings.TrimPrefix(userPathPrefix, "/")) {
				return base + "/" + v
			}
			return base + userPathPrefix + v
		},
	},
}

// ClassifyAvatar tells which form ref takes.
func ClassifyAvatar(ref models.AvatarRef) models.AvatarKind {
	v := strings.TrimSpace(string(ref))
	if v == "" {
		return models.AvatarNone
	}
	for _, r := range avatarRules {
		if r.match(v) {
			return r.kind
		}
	}
	return models.AvatarNone
}

// ResolveAvatar turns ref into a displayable URL against base. It reports
// false when no picture should be shown.
func ResolveAvatar(ref models.AvatarRef, base string) (string, bool) {
	v := strings.TrimSpace(string(ref))
	if v == "" {
		return "", false
	}
	base = strings.TrimRight(base, "/")
	for _, r := range avatarRules {
		if r.match(v) {
			return r.build(v, base), true
		}
	}
	return "", false
}

// AvatarService keeps the current identity's profile picture. The locally
// cached reference wins over the identity's own field.
type AvatarService struct {
	Deps
	session *SessionService
	users   client.UserAPI
	baseURL string

	mu     sync.Mutex
	scope  string
	loaded bool
	ref    models.AvatarRef
}

func NewAvatarService(d Deps, session *SessionService, users client.UserAPI, baseURL string) *AvatarService {
	s := &AvatarService{Deps: d.withDefaults("avatar"), session: session, users: users, baseURL: baseURL}
	s.Bus.Subscribe(events.TopicIdentityChanged, s.onIdentityChanged)
	s.Bus.Subscribe(events.TopicAvatarUpdated, s.applyRemote)
	return s
}

func (s *AvatarService) cachedLocked(ctx context.Context) models.AvatarRef {
	scope := s.session.Scope()
	if !s.loaded || s.scope != scope {
		var ref models.AvatarRef
		s.Store.Get(ctx, scope, storage.NameAvatar, &ref)
		s.scope, s.ref, s.loaded = scope, ref, true
	}
	return s.ref
}

// Ref is the effective avatar reference of the current identity.
func (s *AvatarService) Ref(ctx context.Context) models.AvatarRef {
	id, ok := s.session.Identity()
	if !ok {
		return ""
	}

	s.mu.Lock()
	cached := s.cachedLocked(ctx)
	s.mu.Unlock()

	if cached != "" {
		return cached
	}
	return id.AvatarRef
}

// URL resolves the current avatar.
func (s *AvatarService) URL(ctx context.Context) (string, bool) {
	return ResolveAvatar(s.Ref(ctx), s.baseURL)
}

// Upload validates file, sends it and adopts the returned reference.
// Validation failures happen before any remote call; a remote failure
// leaves the current avatar untouched.
func (s *AvatarService) Upload(ctx context.Context, file models.File) (string, error) {
	if !s.session.IsAuthenticated() {
		return "", common.ErrNotAuthenticated
	}
	if _, err := ValidateImage(file, MaxAvatarBytes); err != nil {
		return "", err
	}

	ref, err := s.users.UploadAvatar(ctx, file)
	if err != nil {
		s.Log.Warn(ctx, "avatar upload failed", "err", err)
		return "", common.Remote("upload avatar", err)
	}

	s.set(ctx, ref)
	url, _ := ResolveAvatar(ref, s.baseURL)
	return url, nil
}

// Remove clears the avatar locally even when the backend call fails; the
// remote error is still returned.
func (s *AvatarService) Remove(ctx context.Context) error {
	if !s.session.IsAuthenticated() {
		return common.ErrNotAuthenticated
	}

	var remoteErr error
	if err := s.users.RemoveAvatar(ctx); err != nil {
		s.Log.Error(ctx, "avatar removal failed on server", "err", err)
		remoteErr = common.Remote("remove avatar", err)
	}

	s.set(ctx, "")
	return remoteErr
}

func (s *AvatarService) set(ctx context.Context, ref models.AvatarRef) {
	s.mu.Lock()
	s.cachedLocked(ctx)
	s.ref = ref
	scope := s.scope
	s.mu.Unlock()

	if ref == "" {
		s.forget(ctx, scope, storage.NameAvatar)
	} else {
		s.persist(ctx, scope, storage.NameAvatar, ref)
	}
	if err := s.session.UpdateAvatar(ctx, ref); err != nil {
		s.Log.Warn(ctx, "identity avatar not updated", "err", err)
	}
	s.publish(ctx, events.TopicAvatarUpdated, scope, AvatarChanged{Ref: ref})
}

// Preview returns a data URL of file for display before upload.
func (s *AvatarService) Preview(file models.File) (string, error) {
	mime, err := ValidateImage(file, MaxAvatarBytes)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(file.Data), nil
}

// onIdentityChanged drops the cached reference when someone else signs in,
// so the next read reloads it for the new identity.
func (s *AvatarService) onIdentityChanged(ctx context.Context, e events.Event) {
	var p IdentityChanged
	if err := e.Decode(&p); err != nil {
		s.Log.Warn(ctx, "bad identity event", "err", err)
		return
	}
	scope := AnonymousScope
	if p.Identity != nil {
		scope = p.Identity.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scope != scope {
		s.loaded = false
	}
}

func (s *AvatarService) applyRemote(ctx context.Context, e events.Event) {
	if !e.Remote {
		return
	}
	var p AvatarChanged
	if err := e.Decode(&p); err != nil {
		s.Log.Warn(ctx, "bad avatar event", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded && s.scope == e.Scope {
		s.ref = p.Ref
	}
}
