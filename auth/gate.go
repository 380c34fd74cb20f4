package auth

import "sync"

type GateState string

const (
	GateChecking                GateState = "checking-session"
	GateRedirectUnauthenticated GateState = "redirect-unauthenticated"
	GateRedirectForbidden       GateState = "redirect-forbidden"
	GateGranted                 GateState = "granted"
)

// Evaluate decides admin access for a resolved session.
func Evaluate(s Snapshot) GateState {
	switch {
	case !s.SignedIn():
		return GateRedirectUnauthenticated
	case !s.IsAdmin:
		return GateRedirectForbidden
	default:
		return GateGranted
	}
}

// Gate tracks admin access across session changes. It starts in
// GateChecking until the first snapshot is known.
type Gate struct {
	mu    sync.Mutex
	state GateState
}

func NewGate() *Gate {
	return &Gate{state: GateChecking}
}

func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Update re-evaluates the gate for s and returns the new state.
func (g *Gate) Update(s Snapshot) GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Evaluate(s)
	return g.state
}
