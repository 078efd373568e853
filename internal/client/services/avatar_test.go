package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/client/repositories/kv"
	"github.com/edusync/edusync-client/internal/client/storage"
	"github.com/edusync/edusync-client/internal/common"
)

const base = "https://api.example.com"

func TestResolveAvatar(t *testing.T) {
	tests := []struct {
		name string
		ref  models.AvatarRef
		want string
		ok   bool
		kind models.AvatarKind
	}{
		{"id token", "42", base + "/api/user/42/profile-picture", true, models.AvatarIDToken},
		{"absolute", "https://cdn.example.com/x.png", "https://cdn.example.com/x.png", true, models.AvatarAbsoluteURL},
		{"absolute http", "http://cdn/x.png", "http://cdn/x.png", true, models.AvatarAbsoluteURL},
		{"empty", "", "", false, models.AvatarNone},
		{"blank", "  ", "", false, models.AvatarNone},
		{"server path", "/api/user/42/profile-picture", base + "/api/user/42/profile-picture", true, models.AvatarServerPath},
		{"suffix", "42/profile-picture", base + "/api/user/42/profile-picture", true, models.AvatarSuffixPath},
		{"suffix leading slash", "/42/profile-picture", base + "/api/user/42/profile-picture", true, models.AvatarSuffixPath},
		{"suffix already rooted", "api/user/42/profile-picture", base + "/api/user/42/profile-picture", true, models.AvatarSuffixPath},
		{"unrecognized", "avatar.png", "", false, models.AvatarNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveAvatar(tt.ref, base+"/")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.kind, ClassifyAvatar(tt.ref))
		})
	}
}

func TestAvatar_RefFallsBackToIdentity(t *testing.T) {
	ctx := context.Background()
	tb := newTab(t, kv.NewMemoryRepository())
	assert.Empty(t, tb.avatar.Ref(ctx), "anonymous has no picture")

	id := ann()
	id.AvatarRef = "42"
	tb.login(t, id)

	url, ok := tb.avatar.URL(ctx)
	require.True(t, ok)
	assert.Equal(t, base+"/api/user/42/profile-picture", url)

	require.NoError(t, tb.deps.Store.Set(ctx, "42", storage.NameAvatar, models.AvatarRef("https://cdn/x.png")))
	other := newTab(t, tb.repo)
	other.session.Restore(ctx)
	assert.Equal(t, models.AvatarRef("https://cdn/x.png"), other.avatar.Ref(ctx), "local cache wins")
}

func TestAvatar_UploadValidatesBeforeRemote(t *testing.T) {
	ctx := context.Background()
	tb := newTab(t, kv.NewMemoryRepository())

	_, err := tb.avatar.Upload(ctx, models.NewFile("a.png", "image/png", pngHeader))
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	tb.login(t, ann())

	tests := []struct {
		name string
		file models.File
	}{
		{"not an image type", models.NewFile("a.pdf", "application/pdf", []byte("%PDF-1.4"))},
		{"too large", models.File{Name: "big.png", ContentType: "image/png", Size: MaxAvatarBytes + 1, Data: pngHeader}},
		{"content is not an image", models.NewFile("fake.png", "image/png", []byte("%PDF-1.4 not an image"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tb.avatar.Upload(ctx, tt.file)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
	assert.Zero(t, tb.users.UploadN)
}

func TestAvatar_UploadSuccess(t *testing.T) {
	ctx := context.Background()
	tb := newTab(t, kv.NewMemoryRepository())
	tb.login(t, ann())
	seen := collect(tb.deps.Bus, events.TopicAvatarUpdated, events.TopicIdentityChanged)

	tb.users.UploadRef = "42/profile-picture"
	url, err := tb.avatar.Upload(ctx, models.NewFile("me.png", "image/png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, base+"/api/user/42/profile-picture", url)

	id, _ := tb.session.Identity()
	assert.Equal(t, models.AvatarRef("42/profile-picture"), id.AvatarRef)
	assert.ElementsMatch(t, []events.Topic{events.TopicIdentityChanged, events.TopicAvatarUpdated}, seen.topics())

	var stored models.AvatarRef
	require.True(t, tb.deps.Store.Get(ctx, "42", storage.NameAvatar, &stored))
	assert.Equal(t, models.AvatarRef("42/profile-picture"), stored)
}

func TestAvatar_UploadRemoteFailureChangesNothing(t *testing.T) {
	ctx := context.Background()
	tb := newTab(t, kv.NewMemoryRepository())
	id := ann()
	id.AvatarRef = "42"
	tb.login(t, id)

	tb.users.UploadErr = common.ErrUnavailable
	_, err := tb.avatar.Upload(ctx, models.NewFile("me.png", "image/png", pngHeader))

	var re *common.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Message, "backend not available")
	assert.Equal(t, models.AvatarRef("42"), tb.avatar.Ref(ctx))
}

func TestAvatar_RemoveClearsEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	tb := newTab(t, kv.NewMemoryRepository())
	id := ann()
	id.AvatarRef = "42"
	tb.login(t, id)

	tb.users.RemoveErr = common.ErrUnavailable
	err := tb.avatar.Remove(ctx)
	assert.ErrorIs(t, err, common.ErrRemote)

	assert.Empty(t, tb.avatar.Ref(ctx))
	_, ok := tb.avatar.URL(ctx)
	assert.False(t, ok)
	got, _ := tb.session.Identity()
	assert.Empty(t, got.AvatarRef)
	assert.Equal(t, 1, tb.users.RemoveN)
}

func TestAvatar_Preview(t *testing.T) {
	tb := newTab(t, kv.NewMemoryRepository())

	url, err := tb.avatar.Preview(models.NewFile("me.png", "image/png", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	_, err = tb.avatar.Preview(models.NewFile("big.png", "image/png", bytes.Repeat([]byte{0}, int(MaxAvatarBytes)+1)))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAvatar_FollowsOtherTabs(t *testing.T) {
	ctx := context.Background()
	repo := kv.NewMemoryRepository()
	tabA := newTab(t, repo)
	tabB := newTab(t, repo)
	tabA.login(t, ann())
	tabB.session.Restore(ctx)
	require.Empty(t, tabB.avatar.Ref(ctx))

	tabA.deps.Bus.Subscribe(events.TopicAvatarUpdated, func(ctx context.Context, e events.Event) {
		e.Remote = true
		tabB.avatar.applyRemote(ctx, e)
	})

	tabA.users.UploadRef = "/api/user/42/profile-picture"
	_, err := tabA.avatar.Upload(ctx, models.NewFile("me.png", "image/png", pngHeader))
	require.NoError(t, err)

	url, ok := tabB.avatar.URL(ctx)
	require.True(t, ok)
	assert.Equal(t, base+"/api/user/42/profile-picture", url)
}
