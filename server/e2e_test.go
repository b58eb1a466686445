package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/events"
	"github.com/jrsteele09/resume-matcher-client/session"
	"github.com/jrsteele09/resume-matcher-client/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// TestSessionClientAgainstStub drives the real session client through a
// full login, expiry, refresh and logout cycle.
func TestSessionClientAgainstStub(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	store := storage.NewMemorySessionStore()
	bus := events.NewBus(zerolog.Nop())
	var seen []events.EventName
	bus.Subscribe("test.login", events.Login, func(_ context.Context, ev events.Event) { seen = append(seen, ev.Name) })
	bus.Subscribe("test.logout", events.Logout, func(_ context.Context, ev events.Event) { seen = append(seen, ev.Name) })

	client, err := session.New(session.Config{BaseURL: f.http.URL}, store,
		session.WithHTTPClient(f.http.Client()),
		session.WithBus(bus),
		session.WithLogger(zerolog.Nop()),
		session.WithVerifyInterval(0),
	)
	require.NoError(t, err)

	_, err = client.Login(ctx, testEmail, "wrong")
	var authErr *session.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "No active account found with the given credentials", authErr.Message)
	require.False(t, client.IsAuthenticated(ctx))

	login, err := client.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, "Ada", login.User.DisplayName())
	require.True(t, client.IsAuthenticated(ctx))

	user, err := client.VerifyToken(ctx)
	require.NoError(t, err)
	require.Equal(t, testEmail, user.Email())

	// Expire the access token on the server; the next call refreshes once
	// and retries with the new token.
	f.advance(6 * time.Minute)
	resp, err := client.Get(ctx, authapi.PathUser)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile authapi.User
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &profile))
	require.Equal(t, testEmail, profile.Email())

	pair, err := store.Tokens(ctx)
	require.NoError(t, err)
	require.NotEqual(t, login.Access, pair.Access)
	require.NotEqual(t, login.Refresh, pair.Refresh, "stub rotates refresh tokens")

	require.NoError(t, client.Logout(ctx))
	require.False(t, client.IsAuthenticated(ctx))

	// The server forgot the refresh token, not just the client.
	resp, body := f.do(t, http.MethodPost, authapi.PathRefresh, "", authapi.RefreshRequest{Refresh: pair.Refresh})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, body)

	require.Equal(t, []events.EventName{events.Login, events.Logout}, seen)
}

// TestSessionClientRefreshRejected checks that a revoked refresh token ends
// the local session on the next 401.
func TestSessionClientRefreshRejected(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	store := storage.NewMemorySessionStore()

	client, err := session.New(session.Config{BaseURL: f.http.URL}, store,
		session.WithHTTPClient(f.http.Client()),
		session.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)

	login, err := client.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)

	resp, _ := f.do(t, http.MethodPost, authapi.PathLogout, "", authapi.RefreshRequest{Refresh: login.Refresh})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f.advance(6 * time.Minute)
	_, err = client.Get(ctx, authapi.PathUser)
	require.ErrorIs(t, err, session.ErrRefreshFailed)
	require.False(t, client.IsAuthenticated(ctx))

	user, err := client.CurrentUser(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}
