package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/juizlab/internal/client/authz"
	"github.com/dmitrijs2005/juizlab/internal/client/client"
	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/dmitrijs2005/juizlab/internal/client/session"
)

const dateLayout = "2006-01-02"

// List prints the items of one kind, marking the ones the user owns.
func (a *App) List(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("list <recipe|tutorial|blog>")
	}
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return err
	}

	items, err := a.content.List(ctx, kind)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printlnFn("No " + kind.Plural() + " yet.")
		return nil
	}

	st := a.shell.State()
	for _, it := range items {
		mark := ""
		if authz.CanManage(st, it.OwnerID()) {
			mark = " *"
		}
		printlnFn(fmt.Sprintf("#%d  %s  (%s)%s", it.ID, it.Title, it.CreatedAt.Format(dateLayout), mark))
	}
	return nil
}

// Show prints one item and the actions the current user may take on it.
func (a *App) Show(ctx context.Context, args []string) error {
	kind, id, err := kindAndID(args, "show <kind> <id>")
	if err != nil {
		return err
	}

	page, _, err := a.mountPage(ctx, "detail")
	if err != nil {
		return err
	}
	defer page.Stop()

	it, err := a.content.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	printItem(it)
	if actions := authz.Actions(page.State(), it); len(actions) > 0 {
		names := make([]string, len(actions))
		for i, act := range actions {
			names[i] = fmt.Sprintf("%s %s %d", act, it.Kind, it.ID)
		}
		printlnFn("You can:", strings.Join(names, ", "))
	}
	return nil
}

// Add creates an item. It requires a signed-in session; otherwise the
// command is remembered and resumed after login.
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("add <recipe|tutorial|blog>")
	}
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return err
	}
	line := "add " + string(kind)

	page, st, err := a.mountPage(ctx, "add")
	if err != nil {
		return err
	}
	defer page.Stop()

	if st.Status != session.Authenticated {
		a.nav.SignIn(line)
		return errSignInRequired
	}

	draft, err := a.readDraft(models.Draft{Kind: kind}, false)
	if err != nil {
		return err
	}

	it, err := a.content.Add(ctx, draft)
	if err != nil {
		return a.unauthorized(ctx, page, line, err)
	}
	printlnFn(fmt.Sprintf("Created %s #%d.", it.Kind, it.ID))
	return nil
}

// Edit changes a recipe owned by the current user, or with "profile" the
// user's own profile. Blank answers keep the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "profile" {
		return a.EditProfile(ctx)
	}
	kind, id, err := kindAndID(args, "edit recipe <id>")
	if err != nil {
		return err
	}
	if kind != models.KindRecipe {
		return usage("edit recipe <id> | edit profile")
	}
	line := fmt.Sprintf("edit %s %d", kind, id)

	page, st, err := a.mountPage(ctx, "edit")
	if err != nil {
		return err
	}
	defer page.Stop()

	it, err := a.content.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := a.gate(st, it, authz.ActionEdit, line); err != nil {
		return err
	}

	draft, err := a.readDraft(models.Draft{Kind: kind, Title: it.Title, Body: it.Body, Extra: it.Extra}, true)
	if err != nil {
		return err
	}

	// ownership is evaluated again against the state at submit time
	if cur := page.State(); cur.Resolved() {
		if err := a.gate(cur, it, authz.ActionEdit, line); err != nil {
			return err
		}
	}
	if _, err := a.content.Edit(ctx, id, draft); err != nil {
		return a.unauthorized(ctx, page, line, err)
	}
	printlnFn(fmt.Sprintf("Updated %s #%d.", kind, id))
	return nil
}

// Delete removes an item owned by the current user after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	kind, id, err := kindAndID(args, "delete <kind> <id>")
	if err != nil {
		return err
	}
	line := fmt.Sprintf("delete %s %d", kind, id)

	page, st, err := a.mountPage(ctx, "delete")
	if err != nil {
		return err
	}
	defer page.Stop()

	it, err := a.content.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := a.gate(st, it, authz.ActionDelete, line); err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s %q?", kind, it.Title), a.out)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.content.Delete(ctx, kind, id); err != nil {
		return a.unauthorized(ctx, page, line, err)
	}
	printlnFn(fmt.Sprintf("Deleted %s #%d.", kind, id))
	return nil
}

// gate refuses act on r unless the session owns it. Anonymous users are
// sent to sign-in with line as the destination.
func (a *App) gate(st session.State, r models.Owned, act authz.Action, line string) error {
	if authz.Allowed(st, r, act) {
		return nil
	}
	if st.Status != session.Authenticated {
		a.nav.SignIn(line)
		return errSignInRequired
	}
	return errNotOwner
}

// unauthorized routes a 401 from a mutating call through the page session so
// that every view signs out and line is resumed after the next login.
func (a *App) unauthorized(ctx context.Context, page *session.Manager, line string, err error) error {
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	if herr := page.HandleUnauthorized(ctx, line); herr != nil {
		a.logger.Warn(ctx, "sign-out after rejected request failed", "err", herr)
	}
	return errSignInRequired
}

func (a *App) readDraft(d models.Draft, keep bool) (models.Draft, error) {

	ask := func(prompt, current string) (string, error) {
		if keep && current != "" {
			prompt += fmt.Sprintf(" [%s]", current)
		}
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return "", err
		}
		if v == "" && keep {
			return current, nil
		}
		return v, nil
	}

	var err error
	if d.Title, err = ask("Title", d.Title); err != nil {
		return d, err
	}

	bodyPrompt := "Description"
	if d.Kind == models.KindBlog {
		bodyPrompt = "Content"
	}
	if keep {
		bodyPrompt += " (empty keeps the current text)"
	}
	body, err := getMultiline(a.reader, bodyPrompt, a.out)
	if err != nil {
		return d, err
	}
	if body != "" || !keep {
		d.Body = body
	}

	switch d.Kind {
	case models.KindRecipe:
		d.Extra, err = ask("Image path (optional)", d.Extra)
	case models.KindTutorial:
		d.Extra, err = ask("Video URL", d.Extra)
	}
	return d, err
}

func kindAndID(args []string, form string) (models.Kind, int64, error) {
	if len(args) != 2 {
		return "", 0, usage(form)
	}
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, usage(form)
	}
	return kind, id, nil
}

func printItem(it models.Item) {
	printlnFn(fmt.Sprintf("%s #%d: %s", it.Kind, it.ID, it.Title))
	printlnFn(fmt.Sprintf("by user #%d on %s", it.CreatedBy, it.CreatedAt.Format(dateLayout)))
	switch {
	case it.Extra == "":
	case it.Kind == models.KindTutorial:
		printlnFn("Video:", it.Extra)
	default:
		printlnFn("Image:", it.Extra)
	}
	printlnFn()
	printlnFn(it.Body)
}
