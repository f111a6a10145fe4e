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

func TestContent_ReadsWorkAnonymously(t *testing.T) {
	fc := &fakeClient{ListRet: []models.Item{{ID: 1, Title: "Soup"}}}
	svc := NewContentService(fc, credstore.NewMemoryStore())

	items, err := svc.List(context.Background(), models.KindRecipe)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Empty(t, fc.lastTok)
}

func TestContent_MutationsCarryBearerToken(t *testing.T) {
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), issued))
	fc := &fakeClient{AddRet: models.Item{ID: 5}}
	svc := NewContentService(fc, store)
	ctx := context.Background()

	it, err := svc.Add(ctx, models.Draft{Kind: models.KindRecipe, Title: "Soup", Body: "Boil"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), it.ID)
	assert.Equal(t, "acc", fc.lastTok)

	require.NoError(t, svc.Delete(ctx, models.KindRecipe, 5))
	assert.Equal(t, "acc", fc.lastTok)
}

func TestContent_MutationWithoutCredentialIsUnauthorized(t *testing.T) {
	fc := &fakeClient{}
	svc := NewContentService(fc, credstore.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Edit(ctx, 1, models.Draft{Kind: models.KindRecipe, Title: "Soup", Body: "Boil"})
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.ErrorIs(t, svc.Delete(ctx, models.KindBlog, 1), client.ErrUnauthorized)
	assert.Empty(t, fc.calls, "no request without a credential")
}

func TestContent_InvalidDraftNeverSent(t *testing.T) {
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), issued))
	fc := &fakeClient{}
	svc := NewContentService(fc, store)

	_, err := svc.Add(context.Background(), models.Draft{Kind: models.KindBlog})
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")
	assert.Empty(t, fc.calls)
}

func TestContent_BackendErrorsWrapped(t *testing.T) {
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), issued))
	fc := &fakeClient{ItemErr: client.ErrNotFound, DelErr: client.ErrUnauthorized}
	svc := NewContentService(fc, store)
	ctx := context.Background()

	_, err := svc.Get(ctx, models.KindTutorial, 3)
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Contains(t, err.Error(), "get tutorial 3")

	err = svc.Delete(ctx, models.KindTutorial, 3)
	require.ErrorIs(t, err, client.ErrUnauthorized)
}
