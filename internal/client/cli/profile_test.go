package cli

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/dmitrijs2005/juizlab/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileAPI() *fakeAPI {
	api := newFakeAPI()
	api.put(recipe(7, 42))
	api.put(models.Item{Kind: models.KindBlog, ID: 8, Title: "Notes", CreatedBy: 42})
	api.put(recipe(9, 99))
	api.setProfile(models.Profile{ID: 3, UserID: 42, Email: "alice@example.com", Bio: "Cook"})
	return api
}

func TestApp_ProfileOffersActionsOnlyToOwner(t *testing.T) {
	tests := []struct {
		name    string
		as      string
		actions bool
	}{
		{"owner", "alice", true},
		{"another user", "bob", false},
		{"anonymous", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := profileAPI()
			out := captureOutput(t)
			a, _ := newTestApp(t, api, tt.as, "")

			dispatch(context.Background(), a, "profile 42")

			s := out.String()
			assert.Contains(t, s, "(user #42)")
			assert.Contains(t, s, "bio: Cook")
			assert.Contains(t, s, "Recipes (1)")
			assert.Contains(t, s, "Blogs (1)")
			assert.NotContains(t, s, "#9")
			if tt.actions {
				assert.Contains(t, s, "You can: edit profile, delete recipe 7, delete blog 8")
			} else {
				assert.NotContains(t, s, "You can:")
			}
		})
	}
}

func TestApp_OwnProfileRequiresSignIn(t *testing.T) {
	api := profileAPI()
	out := captureOutput(t)
	a, _ := newTestApp(t, api, "", "")

	dispatch(context.Background(), a, "profile")

	assert.Contains(t, out.String(), "Please log in to continue")
	assert.Equal(t, "profile", a.nav.peek())
}

func TestApp_EditProfileKeepsBlankAnswers(t *testing.T) {
	api := profileAPI()
	out := captureOutput(t)
	a, _ := newTestApp(t, api, "alice", "Alice Waters\n\n555 0100\nGrows vegetables\n\n")

	dispatch(context.Background(), a, "edit profile")

	require.Contains(t, out.String(), "Profile updated.")
	api.mu.Lock()
	got := api.lastProfile
	api.mu.Unlock()
	assert.Equal(t, models.ProfileDraft{
		Email:    "alice@example.com",
		FullName: "Alice Waters",
		Bio:      "Grows vegetables",
		Tel:      "555 0100",
	}, got)

	require.Eventually(t, func() bool {
		return a.shell.State().Display() == "Alice Waters"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestApp_EditProfileAnonymousGoesToSignIn(t *testing.T) {
	api := profileAPI()
	out := captureOutput(t)
	a, _ := newTestApp(t, api, "", "")

	dispatch(context.Background(), a, "edit profile")

	assert.Contains(t, out.String(), "Please log in to continue")
	assert.Equal(t, "edit profile", a.nav.peek())
	assert.False(t, api.called("update profile"))
}

func TestApp_ForbiddenProfileEditKeepsSession(t *testing.T) {
	api := profileAPI()
	api.profileErr = client.ErrForbidden
	out := captureOutput(t)
	ctx := context.Background()
	a, store := newTestApp(t, api, "alice", "\n\n\n\n")

	dispatch(ctx, a, "edit profile")

	assert.Contains(t, out.String(), "Not allowed: the server refused this action.")
	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, session.Authenticated, a.shell.State().Status)
	assert.Empty(t, a.nav.peek())
}

func TestApp_RejectedProfileEditSignsOut(t *testing.T) {
	api := profileAPI()
	api.profileErr = client.ErrUnauthorized
	out := captureOutput(t)
	ctx := context.Background()
	a, store := newTestApp(t, api, "alice", "\n\n\n\n")

	dispatch(ctx, a, "edit profile")

	assert.Contains(t, out.String(), "Please log in to continue")
	assert.Equal(t, "edit profile", a.nav.peek())
	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
