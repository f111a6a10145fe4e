// Package authz decides which management actions a view offers for a
// resource. It is advisory only: the backend re-checks ownership on every
// mutating request.
package authz

import (
	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/dmitrijs2005/juizlab/internal/client/session"
)

type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// CanManage reports whether the session belongs to the owner of a resource.
// It must be evaluated against the current state each time; results are not
// cached.
func CanManage(st session.State, ownerID int64) bool {
	uid, ok := st.UserID()
	return ok && uid == ownerID
}

// Actions lists what the current user may do with r.
func Actions(st session.State, r models.Owned) []Action {
	if r == nil || !CanManage(st, r.OwnerID()) {
		return nil
	}
	return []Action{ActionEdit, ActionDelete}
}

// Allowed reports whether a is among the actions offered for r.
func Allowed(st session.State, r models.Owned, a Action) bool {
	for _, x := range Actions(st, r) {
		if x == a {
			return true
		}
	}
	return false
}
