package session_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/resume-matcher-client/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := session.NewMetrics(prometheus.NewRegistry())
	f := setupTestFixture(t, session.WithMetrics(m))
	ctx := context.Background()

	_, err := f.client.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("success")))

	f.backend.validAccess = "A9"
	f.backend.freezeAccess = true
	resp, err := f.client.Get(ctx, dataPath)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 1.0, testutil.ToFloat64(m.UnauthorizedRetries))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("success")))

	f.backend.refreshStatus = http.StatusUnauthorized
	_, err = f.client.RefreshAccessToken(ctx)
	require.Error(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Logouts))

	_, err = f.client.RefreshAccessToken(ctx)
	require.ErrorIs(t, err, session.ErrMissingCredential)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("missing")))

	f.backend.loginStatus = http.StatusBadRequest
	f.backend.loginBody = `{"detail":"nope"}`
	_, err = f.client.Login(ctx, testEmail, "bad")
	require.Error(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("rejected")))
}
