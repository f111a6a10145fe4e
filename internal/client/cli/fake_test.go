package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/config"
	"github.com/dmitrijs2005/juizlab/internal/client/credstore"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/dmitrijs2005/juizlab/internal/client/notifier"
	"github.com/dmitrijs2005/juizlab/internal/client/session"
	"github.com/dmitrijs2005/juizlab/internal/logging"
	"github.com/stretchr/testify/require"
)

const testPassword = "pw"

// fakeAPI is a small in-memory backend. Managers call it from their own
// goroutines, so every field is guarded by mu.
type fakeAPI struct {
	mu        sync.Mutex
	users     map[string]models.Identity // by access token
	accounts  map[string]int64           // username -> user id
	items     map[int64]models.Item
	deleteErr error
	editErr   error
	lastDraft models.Draft
	calls     []string

	profiles    map[int64]models.Profile // by user id
	profileErr  error
	lastProfile models.ProfileDraft
}

var _ client.Client = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:    map[string]models.Identity{},
		accounts: map[string]int64{"alice": 42, "bob": 99},
		items:    map[int64]models.Item{},
		profiles: map[int64]models.Profile{},
	}
}

func credFor(username string) models.Credential {
	return models.Credential{AccessToken: "access-" + username, RefreshToken: "refresh-" + username}
}

func (f *fakeAPI) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

// signIn makes the credential of username valid on the backend.
func (f *fakeAPI) signIn(username string) models.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred := credFor(username)
	f.users[cred.AccessToken] = models.Identity{UserID: f.accounts[username], Username: username, Authenticated: true}
	return cred
}

func (f *fakeAPI) put(it models.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[it.ID] = it
}

func (f *fakeAPI) ObtainToken(_ context.Context, username string, password []byte) (models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("token")
	uid, ok := f.accounts[username]
	if !ok || string(password) != testPassword {
		return models.Credential{}, client.ErrUnauthorized
	}
	cred := credFor(username)
	f.users[cred.AccessToken] = models.Identity{UserID: uid, Username: username, Authenticated: true}
	return cred, nil
}

func (f *fakeAPI) Refresh(context.Context, string) (models.Credential, error) {
	return models.Credential{}, client.ErrUnauthorized
}

func (f *fakeAPI) Check(_ context.Context, token string) (models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("check")
	id, ok := f.users[token]
	if !ok {
		return models.Identity{}, client.ErrUnauthorized
	}
	return id, nil
}

func (f *fakeAPI) setProfile(p models.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = p
}

func (f *fakeAPI) FetchProfile(_ context.Context, userID int64, _ string) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return models.Profile{}, client.ErrNotFound
	}
	return p, nil
}

func (f *fakeAPI) UserPage(_ context.Context, userID int64, _ string) (models.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return models.UserPage{}, client.ErrNotFound
	}
	page := models.UserPage{Profile: p}
	for _, it := range f.items {
		if it.CreatedBy != userID {
			continue
		}
		switch it.Kind {
		case models.KindRecipe:
			page.Recipes = append(page.Recipes, it)
		case models.KindTutorial:
			page.Tutorials = append(page.Tutorials, it)
		case models.KindBlog:
			page.Blogs = append(page.Blogs, it)
		}
	}
	return page, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, profileID int64, d models.ProfileDraft, token string) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update profile")
	if f.profileErr != nil {
		return models.Profile{}, f.profileErr
	}
	id, ok := f.users[token]
	if !ok {
		return models.Profile{}, client.ErrUnauthorized
	}
	p, ok := f.profiles[id.UserID]
	if !ok || p.ID != profileID {
		return models.Profile{}, client.ErrForbidden
	}
	f.lastProfile = d
	p.Email, p.FullName, p.Bio, p.Tel = d.Email, d.FullName, d.Bio, d.Tel
	f.profiles[id.UserID] = p
	return p, nil
}

func (f *fakeAPI) Register(context.Context, string, string, []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("register")
	return nil
}

func (f *fakeAPI) List(context.Context, models.Kind, string) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeAPI) Get(_ context.Context, _ models.Kind, id int64, _ string) (models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return models.Item{}, client.ErrNotFound
	}
	return it, nil
}

func (f *fakeAPI) Add(_ context.Context, d models.Draft, _ string) (models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("add")
	f.lastDraft = d
	return models.Item{Kind: d.Kind, ID: 100, Title: d.Title}, nil
}

func (f *fakeAPI) Edit(_ context.Context, id int64, d models.Draft, _ string) (models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("edit")
	if f.editErr != nil {
		return models.Item{}, f.editErr
	}
	f.lastDraft = d
	return models.Item{Kind: d.Kind, ID: id, Title: d.Title}, nil
}

func (f *fakeAPI) Delete(_ context.Context, _ models.Kind, id int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.items, id)
	return nil
}

// output collects what the commands print through printlnFn.
type output struct {
	mu    sync.Mutex
	lines []string
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.lines, "")
}

func captureOutput(t *testing.T) *output {
	t.Helper()
	o := &output{}
	old := printlnFn
	printlnFn = func(a ...any) (int, error) {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.lines = append(o.lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = old })
	return o
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = old })
}

// newTestApp builds an App over the fake backend with the shell mounted.
// When signedInAs is not empty the store starts with that user's credential.
func newTestApp(t *testing.T, api *fakeAPI, signedInAs, input string) (*App, *credstore.MemoryStore) {
	t.Helper()

	store := credstore.NewMemoryStore()
	if signedInAs != "" {
		require.NoError(t, store.Save(context.Background(), api.signIn(signedInAs)))
	}
	cfg := &config.Config{CheckInterval: time.Hour, RequestTimeout: 2 * time.Second}
	a := newApp(cfg, logging.Nop(), store, api, notifier.NewLocal(),
		bufio.NewReader(strings.NewReader(input)), io.Discard)

	require.NoError(t, a.shell.Start(context.Background()))
	t.Cleanup(a.shell.Stop)

	st, err := a.awaitSession(context.Background(), a.shell)
	require.NoError(t, err)
	if signedInAs != "" {
		require.Equal(t, session.Authenticated, st.Status)
	} else {
		require.Equal(t, session.Anonymous, st.Status)
	}
	return a, store
}

func recipe(id, owner int64) models.Item {
	return models.Item{
		Kind:      models.KindRecipe,
		ID:        id,
		Title:     fmt.Sprintf("Recipe %d", id),
		Body:      "Mix and bake.",
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: owner,
	}
}
