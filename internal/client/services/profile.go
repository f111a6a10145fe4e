package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/credstore"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
)

// ProfileService reads user pages and edits the signed-in user's profile.
type ProfileService interface {
	Page(ctx context.Context, userID int64) (models.UserPage, error)
	Mine(ctx context.Context, userID int64) (models.Profile, error)
	Edit(ctx context.Context, profileID int64, draft models.ProfileDraft) (models.Profile, error)
}

type profileService struct {
	client client.Client
	store  credstore.Store
}

func NewProfileService(c client.Client, store credstore.Store) ProfileService {
	return &profileService{client: c, store: store}
}

func (s *profileService) Page(ctx context.Context, userID int64) (models.UserPage, error) {
	token, err := bearerToken(ctx, s.store, false)
	if err != nil {
		return models.UserPage{}, err
	}
	page, err := s.client.UserPage(ctx, userID, token)
	if err != nil {
		return models.UserPage{}, fmt.Errorf("user page %d: %w", userID, err)
	}
	return page, nil
}

// Mine loads the editable profile of userID. The endpoint requires a
// credential.
func (s *profileService) Mine(ctx context.Context, userID int64) (models.Profile, error) {
	token, err := bearerToken(ctx, s.store, true)
	if err != nil {
		return models.Profile{}, err
	}
	p, err := s.client.FetchProfile(ctx, userID, token)
	if err != nil {
		return models.Profile{}, fmt.Errorf("profile of user %d: %w", userID, err)
	}
	return p, nil
}

func (s *profileService) Edit(ctx context.Context, profileID int64, draft models.ProfileDraft) (models.Profile, error) {
	if err := problemsError(draft.Validate()); err != nil {
		return models.Profile{}, err
	}
	token, err := bearerToken(ctx, s.store, true)
	if err != nil {
		return models.Profile{}, err
	}
	p, err := s.client.UpdateProfile(ctx, profileID, draft, token)
	if err != nil {
		return models.Profile{}, fmt.Errorf("edit profile %d: %w", profileID, err)
	}
	return p, nil
}
