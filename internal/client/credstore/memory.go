package credstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/juizlab/internal/client/models"
)

// MemoryStore keeps the credential in process memory. It is used for
// ephemeral sessions and as a test double.
type MemoryStore struct {
	mu       sync.RWMutex
	cred     *models.Credential
	identity *models.Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, cred models.Credential) error {
	if !cred.Complete() {
		return ErrIncompleteCredential
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &cred
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (models.Credential, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return models.Credential{}, false, nil
	}
	return *m.cred, true, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	m.identity = nil
	return nil
}

func (m *MemoryStore) Replace(_ context.Context, old, cred models.Credential) (bool, error) {
	if !cred.Complete() {
		return false, ErrIncompleteCredential
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil || *m.cred != old {
		return false, nil
	}
	m.cred = &cred
	return true, nil
}

func (m *MemoryStore) ClearIf(_ context.Context, old models.Credential) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil || *m.cred != old {
		return false, nil
	}
	m.cred = nil
	m.identity = nil
	return true, nil
}

func (m *MemoryStore) CacheIdentity(_ context.Context, id models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = &id
	return nil
}

func (m *MemoryStore) CacheIdentityFor(_ context.Context, cred models.Credential, id models.Identity) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil || *m.cred != cred {
		return false, nil
	}
	m.identity = &id
	return true, nil
}

func (m *MemoryStore) LoadCachedIdentity(_ context.Context) (models.Identity, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return models.Identity{}, false, nil
	}
	return *m.identity, true, nil
}
