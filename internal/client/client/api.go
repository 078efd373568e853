package client

import (
	"context"

	"github.com/edusync/edusync-client/internal/client/models"
)

// LoginResult is what a successful login yields.
type LoginResult struct {
	User         models.Identity
	SessionToken string
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.Identity, error)
	Logout(ctx context.Context) error
}

type ResourcesAPI interface {
	List(ctx context.Context) ([]models.Resource, error)
	Create(ctx context.Context, in models.ResourceInput, file models.File) (models.Resource, error)
	Update(ctx context.Context, id string, patch models.ResourcePatch) (models.Resource, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) ([]byte, error)
}

type UserAPI interface {
	UploadAvatar(ctx context.Context, file models.File) (models.AvatarRef, error)
	RemoveAvatar(ctx context.Context) error
}

type SearchAPI interface {
	Search(ctx context.Context, query string) ([]models.Candidate, error)
}

// Authorizer receives the session credentials to attach to later calls.
// An empty token clears them.
type Authorizer interface {
	Authorize(token, email string)
}
