package services

import (
	"context"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
)

// fakeClient implements client.Client for service unit tests.
type fakeClient struct {
	ObtainRet models.Credential
	ObtainErr error
	CheckRet  models.Identity
	CheckErr  error

	RegisterErr error

	ListRet  []models.Item
	GetRet   models.Item
	AddRet   models.Item
	EditRet  models.Item
	ItemErr  error
	DelErr   error

	ProfileRet *models.Profile
	PageRet    models.UserPage
	UpdateRet  models.Profile
	ProfileErr error
	lastDraft  models.ProfileDraft

	calls    []string
	lastTok  string
	lastPass string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) ObtainToken(_ context.Context, username string, password []byte) (models.Credential, error) {
	f.calls = append(f.calls, "token")
	f.lastPass = string(password)
	return f.ObtainRet, f.ObtainErr
}

func (f *fakeClient) Refresh(context.Context, string) (models.Credential, error) {
	f.calls = append(f.calls, "refresh")
	return models.Credential{}, client.ErrUnauthorized
}

func (f *fakeClient) Check(_ context.Context, token string) (models.Identity, error) {
	f.calls = append(f.calls, "check")
	f.lastTok = token
	return f.CheckRet, f.CheckErr
}

func (f *fakeClient) FetchProfile(_ context.Context, _ int64, token string) (models.Profile, error) {
	if f.ProfileRet == nil {
		return models.Profile{}, client.ErrNotFound
	}
	f.calls = append(f.calls, "profile")
	f.lastTok = token
	return *f.ProfileRet, nil
}

func (f *fakeClient) UserPage(_ context.Context, _ int64, token string) (models.UserPage, error) {
	f.calls = append(f.calls, "page")
	f.lastTok = token
	return f.PageRet, f.ProfileErr
}

func (f *fakeClient) UpdateProfile(_ context.Context, _ int64, d models.ProfileDraft, token string) (models.Profile, error) {
	f.calls = append(f.calls, "update profile")
	f.lastTok = token
	f.lastDraft = d
	return f.UpdateRet, f.ProfileErr
}

func (f *fakeClient) Register(context.Context, string, string, []byte) error {
	f.calls = append(f.calls, "register")
	return f.RegisterErr
}

func (f *fakeClient) List(_ context.Context, _ models.Kind, token string) ([]models.Item, error) {
	f.calls = append(f.calls, "list")
	f.lastTok = token
	return f.ListRet, f.ItemErr
}

func (f *fakeClient) Get(_ context.Context, _ models.Kind, _ int64, token string) (models.Item, error) {
	f.calls = append(f.calls, "get")
	f.lastTok = token
	return f.GetRet, f.ItemErr
}

func (f *fakeClient) Add(_ context.Context, _ models.Draft, token string) (models.Item, error) {
	f.calls = append(f.calls, "add")
	f.lastTok = token
	return f.AddRet, f.ItemErr
}

func (f *fakeClient) Edit(_ context.Context, _ int64, _ models.Draft, token string) (models.Item, error) {
	f.calls = append(f.calls, "edit")
	f.lastTok = token
	return f.EditRet, f.ItemErr
}

func (f *fakeClient) Delete(_ context.Context, _ models.Kind, _ int64, token string) error {
	f.calls = append(f.calls, "delete")
	f.lastTok = token
	return f.DelErr
}
