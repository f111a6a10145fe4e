package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/juizlab/internal/client/authz"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
)

const editProfileLine = "edit profile"

// Profile prints a user's page. Without an id it shows the signed-in user.
// Management actions are listed only to the page owner.
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usage("profile [<user id>]")
	}

	page, st, err := a.mountPage(ctx, "profile")
	if err != nil {
		return err
	}
	defer page.Stop()

	var userID int64
	if len(args) == 1 {
		userID, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil || userID <= 0 {
			return usage("profile [<user id>]")
		}
	} else {
		uid, ok := st.UserID()
		if !ok {
			a.nav.SignIn("profile")
			return errSignInRequired
		}
		userID = uid
	}

	up, err := a.profile.Page(ctx, userID)
	if err != nil {
		return err
	}

	printProfile(up.Profile)
	cur := page.State()
	var actions []string
	if authz.Allowed(cur, up.Profile, authz.ActionEdit) {
		actions = append(actions, editProfileLine)
	}
	groups := []struct {
		label string
		kind  models.Kind
		items []models.Item
	}{
		{"Recipes", models.KindRecipe, up.Recipes},
		{"Tutorials", models.KindTutorial, up.Tutorials},
		{"Blogs", models.KindBlog, up.Blogs},
	}
	for _, g := range groups {
		printlnFn(fmt.Sprintf("%s (%d)", g.label, len(g.items)))
		for _, it := range g.items {
			printlnFn(fmt.Sprintf("  #%d  %s", it.ID, it.Title))
			if authz.Allowed(cur, it, authz.ActionDelete) {
				actions = append(actions, fmt.Sprintf("delete %s %d", g.kind, it.ID))
			}
		}
	}
	if len(actions) > 0 {
		printlnFn("You can:", strings.Join(actions, ", "))
	}
	return nil
}

// EditProfile changes the signed-in user's profile. Blank answers keep the
// current value.
func (a *App) EditProfile(ctx context.Context) error {

	page, st, err := a.mountPage(ctx, "profile-edit")
	if err != nil {
		return err
	}
	defer page.Stop()

	uid, ok := st.UserID()
	if !ok {
		a.nav.SignIn(editProfileLine)
		return errSignInRequired
	}

	p, err := a.profile.Mine(ctx, uid)
	if err != nil {
		return a.unauthorized(ctx, page, editProfileLine, err)
	}
	if err := a.gate(st, p, authz.ActionEdit, editProfileLine); err != nil {
		return err
	}

	draft, err := a.readProfileDraft(p)
	if err != nil {
		return err
	}

	// ownership is evaluated again against the state at submit time
	if cur := page.State(); cur.Resolved() {
		if err := a.gate(cur, p, authz.ActionEdit, editProfileLine); err != nil {
			return err
		}
	}
	if _, err := a.profile.Edit(ctx, p.ID, draft); err != nil {
		return a.unauthorized(ctx, page, editProfileLine, err)
	}
	printlnFn("Profile updated.")

	// the shell shows the profile name; refresh it in the background
	a.shell.Recheck()
	return nil
}

func (a *App) readProfileDraft(p models.Profile) (models.ProfileDraft, error) {

	ask := func(prompt, current string) (string, error) {
		if current != "" {
			prompt += fmt.Sprintf(" [%s]", current)
		}
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil || v == "" {
			return current, err
		}
		return v, nil
	}

	d := models.ProfileDraft{Bio: p.Bio}
	var err error
	if d.FullName, err = ask("Full name", p.FullName); err != nil {
		return d, err
	}
	if d.Email, err = ask("Email", p.Email); err != nil {
		return d, err
	}
	if d.Tel, err = ask("Phone", p.Tel); err != nil {
		return d, err
	}
	bio, err := getMultiline(a.reader, "Bio (empty keeps the current text)", a.out)
	if err != nil {
		return d, err
	}
	if bio != "" {
		d.Bio = bio
	}
	return d, nil
}

func printProfile(p models.Profile) {
	name := p.FullName
	if name == "" {
		name = "(no name)"
	}
	printlnFn(fmt.Sprintf("%s (user #%d)", name, p.UserID))
	if p.Email != "" {
		printlnFn("  email:", p.Email)
	}
	if p.Tel != "" {
		printlnFn("  phone:", p.Tel)
	}
	if p.Bio != "" {
		printlnFn("  bio:", p.Bio)
	}
	printlnFn()
}
