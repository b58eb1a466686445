// Package listeners holds the independent reactions to session lifecycle
// events: keeping navigation state in step with the session and sending
// the user back to the login page when the session ends.
package listeners

import (
	"context"
	"sync"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/events"
)

// NavState is what the navigation shows for the current session.
type NavState struct {
	Authenticated bool
	Name          string
	Email         string
}

// Navigation tracks NavState from login/logout events.
type Navigation struct {
	mu       sync.RWMutex
	state    NavState
	onChange func(NavState)
}

// NewNavigation starts logged out. onChange, if set, is called after every update.
func NewNavigation(onChange func(NavState)) *Navigation {
	return &Navigation{onChange: onChange}
}

// State returns the current navigation state.
func (n *Navigation) State() NavState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Sync sets the state directly, for start-up before any event has fired.
func (n *Navigation) Sync(authenticated bool, user authapi.User) {
	n.set(stateFor(authenticated, user))
}

func (n *Navigation) handle(_ context.Context, ev events.Event) {
	switch ev.Name {
	case events.Login:
		n.set(stateFor(true, ev.User))
	case events.Logout:
		n.set(NavState{})
	}
}

func (n *Navigation) set(state NavState) {
	n.mu.Lock()
	n.state = state
	n.mu.Unlock()

	if n.onChange != nil {
		n.onChange(state)
	}
}

func stateFor(authenticated bool, user authapi.User) NavState {
	if !authenticated {
		return NavState{}
	}
	return NavState{
		Authenticated: true,
		Name:          user.DisplayName(),
		Email:         user.Email(),
	}
}
