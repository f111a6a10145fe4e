package cli

import "sync"

// navigator plays the role of the sign-in redirect. Session managers call
// SignIn; the pending destination is resumed after the next login.
type navigator struct {
	mu      sync.Mutex
	pending string
}

// SignIn records next as the command to resume. A plain logout passes an
// empty next and drops any command left over from an earlier session.
func (n *navigator) SignIn(next string) {
	n.mu.Lock()
	n.pending = next
	n.mu.Unlock()
}

// take returns and forgets the pending destination.
func (n *navigator) take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	next := n.pending
	n.pending = ""
	return next
}

func (n *navigator) peek() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending
}
