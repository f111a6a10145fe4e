package client

import (
	"context"

	"github.com/dmitrijs2005/juizlab/internal/client/models"
)

// Client is the backend API used by the session and content services.
type Client interface {
	ObtainToken(ctx context.Context, username string, password []byte) (models.Credential, error)
	Refresh(ctx context.Context, refreshToken string) (models.Credential, error)
	Check(ctx context.Context, accessToken string) (models.Identity, error)
	FetchProfile(ctx context.Context, userID int64, accessToken string) (models.Profile, error)
	Register(ctx context.Context, username, email string, password []byte) error
	UserPage(ctx context.Context, userID int64, accessToken string) (models.UserPage, error)
	UpdateProfile(ctx context.Context, profileID int64, draft models.ProfileDraft, accessToken string) (models.Profile, error)

	List(ctx context.Context, kind models.Kind, accessToken string) ([]models.Item, error)
	Get(ctx context.Context, kind models.Kind, id int64, accessToken string) (models.Item, error)
	Add(ctx context.Context, draft models.Draft, accessToken string) (models.Item, error)
	Edit(ctx context.Context, id int64, draft models.Draft, accessToken string) (models.Item, error)
	Delete(ctx context.Context, kind models.Kind, id int64, accessToken string) error
}
