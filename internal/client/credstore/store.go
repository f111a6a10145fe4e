// Package credstore persists the session credential: the access/refresh
// token pair and a cached identity snapshot.
//
// The store is a plain key/value surface. It performs no network calls and
// no validation; deciding whether a stored credential is still accepted is
// the session manager's job.
package credstore

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/juizlab/internal/client/models"
)

var ErrIncompleteCredential = errors.New("credential must carry both access and refresh tokens")

// Store is the persistent credential surface.
//
// Save and Clear are atomic: a concurrent Load observes either the old pair,
// the new pair, or nothing, never a single token.
type Store interface {
	Save(ctx context.Context, cred models.Credential) error
	// Load returns ok=false when no complete credential is stored.
	Load(ctx context.Context) (cred models.Credential, ok bool, err error)
	// Clear removes both tokens and the cached identity.
	Clear(ctx context.Context) error
	// Replace stores cred only if the store still holds old.
	Replace(ctx context.Context, old, cred models.Credential) (swapped bool, err error)
	// ClearIf clears the store only if it still holds old.
	ClearIf(ctx context.Context, old models.Credential) (cleared bool, err error)
	// CacheIdentity stores a non-authoritative snapshot used to render the
	// last known user before the first check completes.
	CacheIdentity(ctx context.Context, id models.Identity) error
	// CacheIdentityFor caches id only while the store still holds cred, so
	// the snapshot never outlives the credential it was confirmed with.
	CacheIdentityFor(ctx context.Context, cred models.Credential, id models.Identity) (cached bool, err error)
	LoadCachedIdentity(ctx context.Context) (id models.Identity, ok bool, err error)
}
