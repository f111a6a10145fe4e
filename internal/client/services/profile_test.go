package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/credstore"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_PageWorksAnonymously(t *testing.T) {
	fc := &fakeClient{PageRet: models.UserPage{Profile: models.Profile{ID: 7, UserID: 42}}}
	svc := NewProfileService(fc, credstore.NewMemoryStore())

	page, err := svc.Page(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), page.Profile.OwnerID())
	assert.Empty(t, fc.lastTok)
}

func TestProfile_MineAndEditCarryBearerToken(t *testing.T) {
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), issued))
	fc := &fakeClient{
		ProfileRet: &models.Profile{ID: 7, UserID: 42, FullName: "Julia"},
		UpdateRet:  models.Profile{ID: 7, UserID: 42, FullName: "Julia C."},
	}
	svc := NewProfileService(fc, store)
	ctx := context.Background()

	p, err := svc.Mine(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Julia", p.FullName)
	assert.Equal(t, "acc", fc.lastTok)

	d := models.ProfileDraft{FullName: "Julia C.", Email: "j@example.com"}
	p, err = svc.Edit(ctx, 7, d)
	require.NoError(t, err)
	assert.Equal(t, "Julia C.", p.FullName)
	assert.Equal(t, d, fc.lastDraft)
	assert.Equal(t, "acc", fc.lastTok)
}

func TestProfile_EditWithoutCredentialIsUnauthorized(t *testing.T) {
	fc := &fakeClient{}
	svc := NewProfileService(fc, credstore.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Edit(ctx, 7, models.ProfileDraft{FullName: "Julia"})
	require.ErrorIs(t, err, client.ErrUnauthorized)
	_, err = svc.Mine(ctx, 42)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, fc.calls)
}

func TestProfile_InvalidDraftNeverSent(t *testing.T) {
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), issued))
	fc := &fakeClient{}
	svc := NewProfileService(fc, store)

	_, err := svc.Edit(context.Background(), 7, models.ProfileDraft{Email: "nope"})
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Empty(t, fc.calls)
}

func TestProfile_ForbiddenEditIsWrapped(t *testing.T) {
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), issued))
	fc := &fakeClient{ProfileErr: client.ErrForbidden}
	svc := NewProfileService(fc, store)

	_, err := svc.Edit(context.Background(), 8, models.ProfileDraft{FullName: "Julia"})
	require.ErrorIs(t, err, client.ErrForbidden)
	assert.Contains(t, err.Error(), "edit profile 8")
}
