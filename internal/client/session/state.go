package session

import "github.com/dmitrijs2005/juizlab/internal/client/models"

type Status int

const (
	Unchecked Status = iota
	Checking
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is the session as seen by one view. Identity and Profile are set
// only when Status is Authenticated. Hint is the last known identity and is
// never authoritative; views may show it while a check is running.
type State struct {
	Status   Status
	Identity *models.Identity
	Profile  *models.Profile
	Hint     *models.Identity
}

// Resolved reports whether the state is a check result rather than a
// transient one.
func (s State) Resolved() bool {
	return s.Status == Authenticated || s.Status == Anonymous
}

// UserID returns the authenticated user id.
func (s State) UserID() (int64, bool) {
	if s.Status != Authenticated || s.Identity == nil {
		return 0, false
	}
	return s.Identity.UserID, true
}

// Display returns a name for prompts: the authenticated user, or the hint
// while checking. It is empty for anonymous sessions.
func (s State) Display() string {
	switch {
	case s.Status == Authenticated && s.Identity != nil:
		return models.DisplayName(*s.Identity, s.Profile)
	case s.Status == Checking && s.Hint != nil:
		return s.Hint.Username
	default:
		return ""
	}
}

func (s State) lastKnown() *models.Identity {
	if s.Status == Authenticated {
		return s.Identity
	}
	return s.Hint
}
