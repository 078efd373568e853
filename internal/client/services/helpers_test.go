package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edusync/edusync-client/internal/client/client"
	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/client/repositories/kv"
	"github.com/edusync/edusync-client/internal/client/storage"
	"github.com/edusync/edusync-client/internal/clock"
	"github.com/edusync/edusync-client/internal/logging"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// ---- fakes ----

type fakeAuth struct {
	mu sync.Mutex

	LoginRes  client.LoginResult
	LoginErr  error
	LoginN    int
	LastEmail string

	RegisterRes models.Identity
	RegisterErr error
	RegisterN   int
	LastReg     models.RegisterRequest

	LogoutErr error
	LogoutN   int
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (client.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginN++
	f.LastEmail = email
	return f.LoginRes, f.LoginErr
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterN++
	f.LastReg = req
	return f.RegisterRes, f.RegisterErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutN++
	return f.LogoutErr
}

type fakeAuthorizer struct {
	Token, Email string
}

func (f *fakeAuthorizer) Authorize(token, email string) { f.Token, f.Email = token, email }

type fakeUsers struct {
	UploadRef models.AvatarRef
	UploadErr error
	UploadN   int
	RemoveErr error
	RemoveN   int
}

func (f *fakeUsers) UploadAvatar(context.Context, models.File) (models.AvatarRef, error) {
	f.UploadN++
	return f.UploadRef, f.UploadErr
}

func (f *fakeUsers) RemoveAvatar(context.Context) error {
	f.RemoveN++
	return f.RemoveErr
}

type fakeResourcesAPI struct {
	ListRes     []models.Resource
	ListErr     error
	CreateRes   models.Resource
	CreateErr   error
	CreateN     int
	UpdateErr   error
	UpdateN     int
	DeleteErr   error
	DeleteN     int
	DownloadRes []byte
	DownloadErr error
}

func (f *fakeResourcesAPI) List(context.Context) ([]models.Resource, error) {
	return f.ListRes, f.ListErr
}

func (f *fakeResourcesAPI) Create(context.Context, models.ResourceInput, models.File) (models.Resource, error) {
	f.CreateN++
	return f.CreateRes, f.CreateErr
}

func (f *fakeResourcesAPI) Update(_ context.Context, id string, _ models.ResourcePatch) (models.Resource, error) {
	f.UpdateN++
	return models.Resource{ID: id}, f.UpdateErr
}

func (f *fakeResourcesAPI) Delete(context.Context, string) error {
	f.DeleteN++
	return f.DeleteErr
}

func (f *fakeResourcesAPI) Download(context.Context, string) ([]byte, error) {
	return f.DownloadRes, f.DownloadErr
}

// failingRepo rejects every write, like a full or disabled browser store.
type failingRepo struct {
	*kv.MemoryRepository
}

func (failingRepo) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

// ---- wiring ----

type tab struct {
	deps     Deps
	clock    *clock.FakeClock
	repo     kv.Repository
	session  *SessionService
	auth     *fakeAuth
	authz    *fakeAuthorizer
	res      *ResourceService
	users    *fakeUsers
	avatar   *AvatarService
	settings *SettingsService
}

func newDeps(repo kv.Repository, clk clock.Clock, busOpts ...events.Option) Deps {
	log := logging.Nop()
	return Deps{
		Store: storage.New(repo, log),
		Bus:   events.NewBus(log, busOpts...),
		Log:   log,
		Clock: clk,

		Warnings: &StorageWarnings{},
	}
}

func newTab(t *testing.T, repo kv.Repository, busOpts ...events.Option) *tab {
	t.Helper()
	clk := clock.NewFake(t0)
	d := newDeps(repo, clk, busOpts...)
	tb := &tab{deps: d, clock: clk, repo: repo, auth: &fakeAuth{}, authz: &fakeAuthorizer{}, users: &fakeUsers{}}
	tb.session = NewSessionService(d, tb.auth, WithAuthorizer(tb.authz))
	tb.res = NewResourceService(d, tb.session)
	tb.avatar = NewAvatarService(d, tb.session, tb.users, "https://api.example.com")
	tb.settings = NewSettingsService(d, tb.session)
	t.Cleanup(func() { _ = d.Bus.Close() })
	return tb
}

func ann() models.Identity {
	return models.Identity{ID: "42", DisplayName: "Ann Lee", Email: "ann@uni.edu", Role: "student"}
}

// login signs the tab in as id.
func (tb *tab) login(t *testing.T, id models.Identity) {
	t.Helper()
	tb.auth.LoginRes = client.LoginResult{User: id, SessionToken: "tok-" + id.ID}
	_, err := tb.session.Login(context.Background(), id.Email, "secret")
	require.NoError(t, err)
}

// collect records the events of topics delivered on bus.
type collector struct {
	mu     sync.Mutex
	events []events.Event
}

func collect(bus *events.Bus, topics ...events.Topic) *collector {
	c := &collector{}
	for _, tp := range topics {
		bus.Subscribe(tp, func(_ context.Context, e events.Event) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.events = append(c.events, e)
		})
	}
	return c
}

func (c *collector) topics() []events.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Topic, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Topic)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
