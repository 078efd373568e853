package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edusync/edusync-client/internal/client/client"
	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/client/storage"
	"github.com/edusync/edusync-client/internal/common"
)

// SessionState is the lifecycle of the tab's session.
type SessionState string

const (
	StateUnknown       SessionState = "UNKNOWN"
	StateRestoring     SessionState = "RESTORING"
	StateAuthenticated SessionState = "AUTHENTICATED"
	StateAnonymous     SessionState = "ANONYMOUS"
)

// AnonymousScope keys personal data while nobody is signed in.
const AnonymousScope = "anonymous"

// SessionService owns the current identity.
//
// Restore trusts the stored identity and marker as they are: it does not
// revalidate them against the server.
type SessionService struct {
	Deps
	auth  client.AuthAPI
	authz client.Authorizer

	mu       sync.RWMutex
	state    SessionState
	identity *models.Identity
	marker   *models.SessionMarker
}

type SessionOption func(*SessionService)

// WithAuthorizer forwards session credentials to a remote client.
func WithAuthorizer(a client.Authorizer) SessionOption {
	return func(s *SessionService) { s.authz = a }
}

func NewSessionService(d Deps, auth client.AuthAPI, opts ...SessionOption) *SessionService {
	s := &SessionService{Deps: d.withDefaults("session"), auth: auth, state: StateUnknown}
	for _, o := range opts {
		o(s)
	}
	s.Bus.Subscribe(events.TopicIdentityChanged, s.applyRemote)
	return s
}

func (s *SessionService) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns the current identity, if authenticated.
func (s *SessionService) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// Marker returns the current session marker, if authenticated.
func (s *SessionService) Marker() (models.SessionMarker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.marker == nil {
		return models.SessionMarker{}, false
	}
	return *s.marker, true
}

func (s *SessionService) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// Scope is the storage scope of personal data: the identity id, or
// AnonymousScope.
func (s *SessionService) Scope() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return AnonymousScope
	}
	return s.identity.ID
}

// Restore rebuilds the session from the store. Both the identity and the
// marker must be present and parseable; otherwise the session is anonymous
// and any partial leftover is cleared.
func (s *SessionService) Restore(ctx context.Context) SessionState {
	s.mu.Lock()
	s.state = StateRestoring
	s.mu.Unlock()

	var id models.Identity
	hasID := s.Store.Get(ctx, storage.Global, storage.NameIdentity, &id) && id.Valid()

	var m models.SessionMarker
	hasMarker := s.Store.Get(ctx, storage.Global, storage.NameSession, &m) && m.Token != ""

	if !hasID || !hasMarker {
		if hasID || hasMarker {
			s.Log.Info(ctx, "clearing partial session")
		}
		s.forget(ctx, storage.Global, storage.NameIdentity, storage.NameSession)

		s.mu.Lock()
		s.state, s.identity, s.marker = StateAnonymous, nil, nil
		s.mu.Unlock()
		return StateAnonymous
	}

	normalized := id.Normalized()
	if normalized.Role != id.Role {
		s.persist(ctx, storage.Global, storage.NameIdentity, normalized)
	}

	s.mu.Lock()
	s.state, s.identity, s.marker = StateAuthenticated, &normalized, &m
	s.mu.Unlock()

	s.authorize(m.Token, normalized.Email)
	s.Log.Info(ctx, "session restored", "user", normalized.ID)
	return StateAuthenticated
}

func (s *SessionService) Login(ctx context.Context, email, password string) (models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Identity{}, common.NewValidationError("email", "is required")
	}
	if password == "" {
		return models.Identity{}, common.NewValidationError("password", "is required")
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.Log.Warn(ctx, "login failed", "err", err)
		return models.Identity{}, common.Remote("login", err)
	}

	id := res.User.Normalized()
	if !id.Valid() || res.SessionToken == "" {
		return models.Identity{}, &common.RemoteError{Op: "login", Message: "malformed response"}
	}

	m := models.SessionMarker{
		Token:     res.SessionToken,
		IssuedAt:  s.Clock.Now().UTC(),
		ExpiresAt: tokenExpiry(res.SessionToken),
	}

	s.mu.Lock()
	s.state, s.identity, s.marker = StateAuthenticated, &id, &m
	s.mu.Unlock()

	s.persist(ctx, storage.Global, storage.NameIdentity, id)
	s.persist(ctx, storage.Global, storage.NameSession, m)
	s.authorize(m.Token, id.Email)

	s.publish(ctx, events.TopicIdentityChanged, storage.Global, IdentityChanged{Identity: &id})
	s.Log.Info(ctx, "logged in", "user", id.ID, "role", id.Role)
	return id, nil
}

// Register creates an account. It does not sign the new user in.
func (s *SessionService) Register(ctx context.Context, req models.RegisterRequest) (models.Identity, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Role = models.NormalizeRole(req.Role)

	if err := validateStruct(req); err != nil {
		return models.Identity{}, err
	}

	id, err := s.auth.Register(ctx, req)
	if err != nil {
		s.Log.Warn(ctx, "registration failed", "err", err)
		return models.Identity{}, common.Remote("register", err)
	}
	return id.Normalized(), nil
}

// Logout clears the session locally whatever the server answers. A remote
// failure is still returned so the caller can mention it.
func (s *SessionService) Logout(ctx context.Context) error {
	var remoteErr error
	if s.IsAuthenticated() {
		if err := s.auth.Logout(ctx); err != nil {
			s.Log.Warn(ctx, "remote logout failed", "err", err)
			remoteErr = common.Remote("logout", err)
		}
	}

	s.mu.Lock()
	s.state, s.identity, s.marker = StateAnonymous, nil, nil
	s.mu.Unlock()

	s.forget(ctx, storage.Global, storage.NameIdentity, storage.NameSession)
	s.authorize("", "")
	s.publish(ctx, events.TopicIdentityChanged, storage.Global, IdentityChanged{})
	return remoteErr
}

// UpdateAvatar sets the avatar reference of the current identity.
func (s *SessionService) UpdateAvatar(ctx context.Context, ref models.AvatarRef) error {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return common.ErrNotAuthenticated
	}
	id := *s.identity
	id.AvatarRef = ref
	s.identity = &id
	s.mu.Unlock()

	s.persist(ctx, storage.Global, storage.NameIdentity, id)
	s.publish(ctx, events.TopicIdentityChanged, storage.Global, IdentityChanged{Identity: &id})
	return nil
}

// applyRemote follows a login, logout or profile change made in another tab.
func (s *SessionService) applyRemote(ctx context.Context, e events.Event) {
	if !e.Remote {
		return
	}
	var p IdentityChanged
	if err := e.Decode(&p); err != nil {
		s.Log.Warn(ctx, "bad identity event", "err", err)
		return
	}

	if p.Identity == nil {
		s.mu.Lock()
		s.state, s.identity, s.marker = StateAnonymous, nil, nil
		s.mu.Unlock()
		s.authorize("", "")
		return
	}

	id := p.Identity.Normalized()
	var m models.SessionMarker
	hasMarker := s.Store.Get(ctx, storage.Global, storage.NameSession, &m) && m.Token != ""

	s.mu.Lock()
	s.state, s.identity = StateAuthenticated, &id
	if hasMarker {
		s.marker = &m
	}
	token := ""
	if s.marker != nil {
		token = s.marker.Token
	}
	s.mu.Unlock()

	s.authorize(token, id.Email)
}

func (s *SessionService) authorize(token, email string) {
	if s.authz != nil {
		s.authz.Authorize(token, email)
	}
}

// tokenExpiry reads the exp claim of a JWT session token without verifying
// it. Opaque tokens have no expiry.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time.UTC()
	return &t
}
