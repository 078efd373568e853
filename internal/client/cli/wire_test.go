package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusync/edusync-client/internal/client/config"
	"github.com/edusync/edusync-client/internal/logging"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = "http://127.0.0.1:1"
	return cfg
}

func TestNewAppFromConfig_SQLiteAndLocalTransport(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SQLiteDSN = filepath.Join(t.TempDir(), "profile.db")

	app, closeFn, err := NewAppFromConfig(ctx, cfg, logging.New(&bytes.Buffer{}, "error"), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)

	app.svc.Resources.ToggleFavorite(ctx, "1")
	require.NoError(t, closeFn())

	// A second run over the same file sees the favorite.
	app, closeFn, err = NewAppFromConfig(ctx, cfg, logging.New(&bytes.Buffer{}, "error"), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })
	assert.True(t, app.svc.Resources.IsFavorite(ctx, "1"))
}

func TestNewAppFromConfig_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Storage = "redis"
	cfg.Transport = config.TransportRedis
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	app, closeFn, err := NewAppFromConfig(context.Background(), cfg, logging.New(&bytes.Buffer{}, "error"), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	assert.Len(t, app.svc.Resources.List(context.Background()), 2)
}

func TestNewAppFromConfig_BadBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Storage = "indexeddb"

	_, _, err := NewAppFromConfig(context.Background(), cfg, logging.New(&bytes.Buffer{}, "error"), strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewAppFromConfig_OfflineRemoteCallsFail(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Storage = "memory"
	cfg.Transport = config.TransportNone

	app, closeFn, err := NewAppFromConfig(ctx, cfg, logging.New(&bytes.Buffer{}, "error"), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	err = app.Refresh(ctx)
	require.Error(t, err)
	assert.Equal(t, "backend not available, please check if the server is running", describe(err))
}

func TestNewAppFromConfig_RemoteSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resources/search", r.URL.Path)
		assert.Equal(t, "graphs", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":9,"title":"Graphs","description":"","relevanceScore":0.5}]}`))
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	cfg := testConfig()
	cfg.APIBaseURL = srv.URL
	cfg.Storage = "memory"
	cfg.Transport = config.TransportNone
	cfg.SearchSource = config.SearchRemote

	app, closeFn, err := NewAppFromConfig(ctx, cfg, logging.New(&bytes.Buffer{}, "error"), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	require.NoError(t, app.svc.Search.SearchNow(ctx, "graphs"))
	st := app.svc.Search.State(ctx)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "9", st.Results[0].ID)
}
