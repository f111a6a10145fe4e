// Package notifier broadcasts session changes between views. A view that
// logs out (or otherwise changes the stored credential) announces it so that
// every other mounted view re-checks instead of waiting for its next tick.
package notifier

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/juizlab/internal/common"
	"github.com/google/uuid"
)

// Event is a session change announcement. Origin identifies the sender so a
// subscriber can ignore its own broadcasts.
type Event struct {
	Name   string `json:"name"`
	Origin string `json:"origin,omitempty"`
}

// AuthChange builds the event sent after login and logout.
func AuthChange(origin string) Event {
	return Event{Name: common.EventAuthChange, Origin: origin}
}

type Handler func(Event)

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	// Subscribe registers h and returns a function that removes it. The
	// returned function may be called any number of times.
	Subscribe(h Handler) (unsubscribe func())
}

// Local fans events out to in-process subscribers. Handlers run
// synchronously on the notifying goroutine and must not block.
type Local struct {
	mu       sync.RWMutex
	handlers map[uuid.UUID]Handler
}

func NewLocal() *Local {
	return &Local{handlers: make(map[uuid.UUID]Handler)}
}

func (l *Local) Notify(_ context.Context, ev Event) error {
	l.mu.RLock()
	hs := make([]Handler, 0, len(l.handlers))
	for _, h := range l.handlers {
		hs = append(hs, h)
	}
	l.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
	return nil
}

func (l *Local) Subscribe(h Handler) func() {
	id := uuid.New()

	l.mu.Lock()
	l.handlers[id] = h
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.handlers, id)
			l.mu.Unlock()
		})
	}
}

// Len returns the number of live subscriptions.
func (l *Local) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.handlers)
}
