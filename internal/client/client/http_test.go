package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/common"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, success bool, msg string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"success": success, "message": msg, "data": data}))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", 2*time.Second)
}

func TestHTTPClient_LoginStoresTokenForLaterCalls(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var req loginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ann@uni.edu", req.Email)
			assert.Equal(t, "pw", req.Password)
			writeEnvelope(t, w, http.StatusOK, true, "ok", map[string]any{
				"user": map[string]any{
					"id": 42, "firstName": "Ann", "lastName": "Lee", "email": "ann@uni.edu",
					"role": "student", "profilePicture": "42/profile-picture",
				},
				"sessionToken": "tok",
			})
		case "/api/resources/list":
			gotAuth = r.Header.Get(common.AuthorizationHeaderName)
			writeEnvelope(t, w, http.StatusOK, true, "", []any{})
		default:
			http.NotFound(w, r)
		}
	})

	res, err := c.Login(context.Background(), "ann@uni.edu", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.SessionToken)
	assert.Equal(t, models.Identity{
		ID: "42", DisplayName: "Ann Lee", Email: "ann@uni.edu",
		Role: models.RoleStudent, AvatarRef: "42/profile-picture",
	}, res.User)

	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestHTTPClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusUnauthorized, false, "Invalid email or password", nil)
	})

	_, err := c.Login(context.Background(), "a@b.c", "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRemote)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	var re *common.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Invalid email or password", re.Message)
}

func TestHTTPClient_EnvelopeFailureOn200(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, false, "Email already registered", nil)
	})

	_, err := c.Register(context.Background(), models.RegisterRequest{Email: "a@b.c", Role: models.RoleFaculty})
	var re *common.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Email already registered", re.Message)
}

func TestHTTPClient_RegisterSendsLowercaseRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "faculty", req.Role)
		writeEnvelope(t, w, http.StatusOK, true, "", map[string]any{
			"user": map[string]any{"id": "7", "firstName": "Bo", "lastName": "Ng", "email": req.Email, "role": "FACULTY"},
		})
	})

	id, err := c.Register(context.Background(), models.RegisterRequest{
		FirstName: "Bo", LastName: "Ng", Email: "bo@uni.edu", Password: "secret1", Role: models.RoleFaculty,
	})
	require.NoError(t, err)
	assert.Equal(t, "7", id.ID)
	assert.Equal(t, models.RoleFaculty, id.Role)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewHTTPClient(srv.URL, time.Second)

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnavailable)

	var re *common.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Message, "backend not available")
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusForbidden, common.ErrUnauthorized},
		{http.StatusServiceUnavailable, common.ErrUnavailable},
		{http.StatusNotFound, common.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			err := c.Delete(context.Background(), "1")
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, common.ErrRemote)
		})
	}
}

func TestHTTPClient_ListMapsResources(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, true, "", []map[string]any{{
			"id": 1, "title": "Intro", "description": "d", "fileName": "a.pdf", "fileSize": 10,
			"fileType": "pdf", "uploadedBy": 3, "uploadedAt": "2024-01-15T10:30:00",
		}})
	})

	list, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	r := list[0]
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, "3", r.OwnerName)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), r.CreatedAt)
	assert.False(t, r.ModifiedAt.Before(r.CreatedAt))
}

func TestHTTPClient_CreateSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Notes", r.FormValue("title"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "notes.pdf", hdr.Filename)
		assert.Equal(t, "application/pdf", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte("%PDF"), data)
		writeEnvelope(t, w, http.StatusOK, true, "", map[string]any{
			"id": 9, "title": "Notes", "fileName": "notes.pdf", "fileSize": 4, "fileType": "pdf",
			"uploaderName": "Dr. Smith", "uploadedAt": "2024-02-01T00:00:00Z",
		})
	})

	res, err := c.Create(context.Background(), models.ResourceInput{Title: "Notes", FileName: "notes.pdf"},
		models.NewFile("notes.pdf", "application/pdf", []byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, "9", res.ID)
	assert.Equal(t, "Dr. Smith", res.OwnerName)
}

func TestHTTPClient_UpdateSendsOnlyPatchedFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/resources/5", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"title": "New"}, body)
		writeEnvelope(t, w, http.StatusOK, true, "", map[string]any{"id": 5, "title": "New"})
	})

	title := "New"
	res, err := c.Update(context.Background(), "5", models.ResourcePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", res.Title)
}

func TestHTTPClient_DownloadRaw(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resources/download/1", r.URL.Path)
		_, _ = w.Write([]byte("bytes"))
	})

	data, err := c.Download(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)
}

func TestHTTPClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "react hooks", r.URL.Query().Get("query"))
		writeEnvelope(t, w, http.StatusOK, true, "", []map[string]any{
			{"id": 1, "title": "React", "relevanceScore": 0.9},
			{"id": "c-1", "title": "Web Dev", "type": "course"},
		})
	})

	hits, err := c.Search(context.Background(), "react hooks")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "resource", hits[0].Type)
	assert.Equal(t, 0.9, hits[0].Relevance)
	assert.Equal(t, "course", hits[1].Type)
}

func TestHTTPClient_AvatarUploadAndRemove(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/profile-picture", r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "ann@uni.edu", r.FormValue("userEmail"))
			writeEnvelope(t, w, http.StatusOK, true, "", map[string]any{"profilePicture": "/api/user/42/profile-picture"})
		case http.MethodDelete:
			assert.Equal(t, "ann@uni.edu", r.URL.Query().Get("userEmail"))
			writeEnvelope(t, w, http.StatusOK, true, "", nil)
		}
	})
	c.Authorize("tok", "ann@uni.edu")

	ref, err := c.UploadAvatar(context.Background(), models.NewFile("me.png", "image/png", []byte{1}))
	require.NoError(t, err)
	assert.Equal(t, models.AvatarRef("/api/user/42/profile-picture"), ref)

	require.NoError(t, c.RemoveAvatar(context.Background()))
}

func TestHTTPClient_DeleteSendsOwnerInQuery(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/resources/17", r.URL.Path)
		assert.Equal(t, "ann+lab@uni.edu", r.URL.Query().Get("userEmail"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ann+lab@uni.edu", r.Form.Get("userEmail"))
		writeEnvelope(t, w, http.StatusOK, true, "", nil)
	})
	c.Authorize("tok", "ann+lab@uni.edu")

	require.NoError(t, c.Delete(context.Background(), "17"))
	assert.Equal(t, 1, calls)
}

func TestHTTPClient_LogoutClearsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusInternalServerError, false, "boom", nil)
	})
	c.Authorize("tok", "a@b.c")

	err := c.Logout(context.Background())
	assert.Error(t, err)
	tok, email := c.credentials()
	assert.Empty(t, tok)
	assert.Empty(t, email)
}

func TestHTTPClient_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	_, err := c.List(context.Background())
	var re *common.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "malformed response", re.Message)
}

func TestHTTPClient_CanceledContextIsNotUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, common.ErrUnavailable))
}

func TestFlexID(t *testing.T) {
	var ids []flexID
	require.NoError(t, json.Unmarshal([]byte(`[1, "a", null, 12345678901]`), &ids))
	assert.Equal(t, []flexID{"1", "a", "", "12345678901"}, ids)
}
