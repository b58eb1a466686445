package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/resume-matcher-client/session"
	"github.com/stretchr/testify/require"
)

func TestVerifyToken(t *testing.T) {
	t.Run("wrapped user body updates the cache", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		f.seed(t, "A1", "R1")
		f.backend.verifyBody = `{"valid":true,"user":{"email":"a@x.com","first_name":"Grace"}}`

		user, err := f.client.VerifyToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "Grace", user.FirstName())

		cached, err := f.client.CurrentUser(ctx)
		require.NoError(t, err)
		require.Equal(t, "Grace", cached.FirstName())
	})

	t.Run("bare user body", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "A1", "R1")
		f.backend.verifyBody = `{"email":"a@x.com","username":"ada"}`

		user, err := f.client.VerifyToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, "ada", user.Username())
	})

	t.Run("throttled within interval", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		f := setupTestFixture(t, session.WithNowTime(func() time.Time { return now }))
		ctx := context.Background()
		f.seed(t, "A1", "R1")

		_, err := f.client.VerifyToken(ctx)
		require.NoError(t, err)
		now = now.Add(time.Second)
		user, err := f.client.VerifyToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "Ada", user.FirstName(), "cached user is returned")

		_, _, verifies := f.backend.counts()
		require.Equal(t, 1, verifies)

		now = now.Add(session.DefaultVerifyInterval)
		_, err = f.client.VerifyToken(ctx)
		require.NoError(t, err)
		_, _, verifies = f.backend.counts()
		require.Equal(t, 2, verifies)
	})

	t.Run("zero interval disables throttling", func(t *testing.T) {
		f := setupTestFixture(t, session.WithVerifyInterval(0))
		f.seed(t, "A1", "R1")

		for i := 0; i < 3; i++ {
			_, err := f.client.VerifyToken(context.Background())
			require.NoError(t, err)
		}
		_, _, verifies := f.backend.counts()
		require.Equal(t, 3, verifies)
	})

	t.Run("expired access token is refreshed first", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "A0", "R1")

		_, err := f.client.VerifyToken(context.Background())
		require.NoError(t, err)
		refreshes, _, verifies := f.backend.counts()
		require.Equal(t, 1, refreshes)
		require.Equal(t, 2, verifies)
	})

	t.Run("rejection logs out", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "A1", "R1")
		f.backend.verifyStatus = http.StatusForbidden

		_, err := f.client.VerifyToken(context.Background())
		require.ErrorIs(t, err, session.ErrVerificationFailed)
		f.requireLoggedOut(t)
	})

	t.Run("network failure keeps the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.seed(t, "A1", "R1")
		f.server.Close()

		_, err := f.client.VerifyToken(context.Background())
		var netErr *session.NetworkError
		require.ErrorAs(t, err, &netErr)
		require.True(t, f.client.IsAuthenticated(context.Background()))
	})

	t.Run("not logged in", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.client.VerifyToken(context.Background())
		require.ErrorIs(t, err, session.ErrMissingCredential)
	})
}
