package session_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/events"
	"github.com/jrsteele09/resume-matcher-client/session"
	"github.com/jrsteele09/resume-matcher-client/storage"
	"github.com/stretchr/testify/require"
)

func TestRefreshAccessToken(t *testing.T) {
	t.Run("stores rotated pair", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		f.seed(t, "A1", "R1")

		access, err := f.client.RefreshAccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "A2", access)

		pair, err := f.store.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, authapi.TokenPair{Access: "A2", Refresh: "R2"}, pair)
		refreshSent, _ := f.backend.sent()
		require.Equal(t, []string{"R1"}, refreshSent)
	})

	t.Run("keeps refresh token when not rotated", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		f.seed(t, "A1", "R1")
		f.backend.nextRefresh = ""

		_, err := f.client.RefreshAccessToken(ctx)
		require.NoError(t, err)

		pair, err := f.store.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, authapi.TokenPair{Access: "A2", Refresh: "R1"}, pair)
	})

	t.Run("writes the full pair when not rotated", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		store := &scriptedStore{SessionStore: storage.NewMemorySessionStore()}
		require.NoError(t, store.SessionStore.SetTokens(ctx, authapi.TokenPair{Access: "A1", Refresh: "R1"}))
		f.backend.nextRefresh = ""
		client := f.clientWithStore(t, store)

		_, err := client.RefreshAccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, []authapi.TokenPair{{Access: "A2", Refresh: "R1"}}, store.writes())
	})

	t.Run("missing refresh token makes no call", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		require.NoError(t, f.store.SetTokens(ctx, authapi.TokenPair{Access: "A1"}))

		_, err := f.client.RefreshAccessToken(ctx)
		require.ErrorIs(t, err, session.ErrMissingCredential)

		refreshes, logouts, _ := f.backend.counts()
		require.Zero(t, refreshes)
		require.Zero(t, logouts)

		pair, err := f.store.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, "A1", pair.Access, "a missing refresh token does not force a logout")
		require.Empty(t, f.recorded())
	})

	t.Run("rejected refresh logs out", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "A1", "R1")
		f.backend.refreshStatus = http.StatusUnauthorized

		_, err := f.client.RefreshAccessToken(context.Background())
		require.ErrorIs(t, err, session.ErrRefreshFailed)

		var refreshErr *session.RefreshError
		require.ErrorAs(t, err, &refreshErr)
		require.Equal(t, http.StatusUnauthorized, refreshErr.Status)

		f.requireLoggedOut(t)
		evs := f.recorded()
		require.Len(t, evs, 1)
		require.Equal(t, events.Logout, evs[0].Name)
	})

	t.Run("unreachable server logs out", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "A1", "R1")
		f.server.Close()

		_, err := f.client.RefreshAccessToken(context.Background())
		require.ErrorIs(t, err, session.ErrRefreshFailed)

		var netErr *session.NetworkError
		require.ErrorAs(t, err, &netErr)
		f.requireLoggedOut(t)
	})

	t.Run("concurrent callers share one request", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "A1", "R1")
		gate := make(chan struct{})
		f.backend.refreshGate = gate

		const callers = 5
		results := make([]string, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup

		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0], errs[0] = f.client.RefreshAccessToken(context.Background())
		}()
		<-f.backend.refreshStarted

		for i := 1; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = f.client.RefreshAccessToken(context.Background())
			}(i)
		}
		// Let the late callers join the outstanding refresh.
		time.Sleep(100 * time.Millisecond)
		close(gate)
		wg.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			require.Equal(t, "A2", results[i])
		}
		refreshes, _, _ := f.backend.counts()
		require.Equal(t, 1, refreshes)
	})

	t.Run("waiting caller can give up", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "A1", "R1")
		gate := make(chan struct{})
		f.backend.refreshGate = gate

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := f.client.RefreshAccessToken(ctx)
			done <- err
		}()
		<-f.backend.refreshStarted
		cancel()
		require.ErrorIs(t, <-done, context.Canceled)

		// The shared refresh is not cancelled with the caller and still lands.
		close(gate)
		require.Eventually(t, func() bool {
			pair, err := f.store.Tokens(context.Background())
			return err == nil && pair.Access == "A2"
		}, time.Second, 10*time.Millisecond)
	})
}
