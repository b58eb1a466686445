package session

import (
	"context"

	"github.com/jrsteele09/resume-matcher-client/authapi"
)

// Store persists the session between runs. storage.SessionStore is the
// production implementation; anything with these methods will do.
type Store interface {
	// Tokens returns the stored pair; absent tokens are empty strings.
	Tokens(ctx context.Context) (authapi.TokenPair, error)
	// SetTokens overwrites the pair. An empty Refresh keeps the stored one.
	SetTokens(ctx context.Context, pair authapi.TokenPair) error
	// User returns the cached user, nil when none.
	User(ctx context.Context) (authapi.User, error)
	SetUser(ctx context.Context, user authapi.User) error
	// Clear removes tokens and user.
	Clear(ctx context.Context) error
}
