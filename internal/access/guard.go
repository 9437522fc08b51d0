package access

import (
	"sync"

	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
)

// Decision is the state of a capability guard.
type Decision int

const (
	// DecisionLoading means the profile fetch has not resolved yet.
	DecisionLoading Decision = iota
	DecisionGranted
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionGranted:
		return "granted"
	case DecisionDenied:
		return "denied"
	default:
		return "loading"
	}
}

// Requirement describes what a guard demands. All set fields must pass.
type Requirement struct {
	Role      *enums.UserRole
	Dashboard bool
	Listing   bool
}

// Guard gates a protected surface behind a profile fetch. It starts in
// loading, resolves exactly once to granted or denied, and never leaves a
// terminal state. Any fetch error resolves to denied.
type Guard struct {
	requirement Requirement

	mu    sync.Mutex
	state Decision
}

func NewGuard(requirement Requirement) *Guard {
	return &Guard{requirement: requirement, state: DecisionLoading}
}

// Resolve feeds the guard the outcome of the profile fetch. Calls after the
// first resolution are ignored.
func (g *Guard) Resolve(profile *models.UserProfile, fetchErr error) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != DecisionLoading {
		return g.state
	}

	if fetchErr != nil {
		g.state = DecisionDenied
		return g.state
	}
	if g.permits(profile) {
		g.state = DecisionGranted
	} else {
		g.state = DecisionDenied
	}
	return g.state
}

// State returns the current decision without mutating it.
func (g *Guard) State() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) permits(profile *models.UserProfile) bool {
	if g.requirement.Role != nil && !HasRole(profile, *g.requirement.Role) {
		return false
	}
	if g.requirement.Dashboard && !CanAccessDashboard(profile) {
		return false
	}
	if g.requirement.Listing && !CanListProperties(profile) {
		return false
	}
	// A guard with no requirements still demands an authenticated profile.
	return profile != nil
}
