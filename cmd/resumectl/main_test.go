package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/resume-matcher-client/internal/config"
	"github.com/jrsteele09/resume-matcher-client/server"
	"github.com/jrsteele09/resume-matcher-client/token"
	"github.com/jrsteele09/resume-matcher-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/resume-matcher-client/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/resume-matcher-client/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "a@x.com"
	testPassword = "Secret123"
)

type testFixture struct {
	stub *httptest.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	cfg := config.Tokens{AccessTokenExpiry: 5 * time.Minute, RefreshTokenExpiry: time.Hour}
	userRepo := fakeuserrepo.NewFakeUserRepo()
	tokens := token.New(cfg, userRepo, refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), cfg), token.NewHMACSigner("1234"))
	_, err := server.SeedUser(userRepo, zerolog.Nop(), testEmail, testPassword, "Ada", time.Now())
	require.NoError(t, err)

	f := &testFixture{
		stub: httptest.NewServer(server.New(config.EnvVars{Env: "TEST"}, userRepo, tokens, server.WithLogger(zerolog.Nop()))),
	}
	t.Cleanup(f.stub.Close)

	t.Setenv("ENV", "TEST")
	t.Setenv("BASE_URL", f.stub.URL)
	t.Setenv("STORAGE_KIND", config.StorageFile)
	t.Setenv("STORAGE_PATH", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("STORAGE_PASSPHRASE", "correct horse")
	t.Setenv("CONFIG_PATH", "")
	return f
}

// resumectl runs one command the way the shell would, each with fresh wiring.
func resumectl(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func TestSessionAcrossInvocations(t *testing.T) {
	setupTestFixture(t)

	out, err := resumectl(t, "", "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")

	_, err = resumectl(t, "", "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)

	_, err = resumectl(t, "", "login", "-email", testEmail, "-password", "wrong")
	require.EqualError(t, err, "login failed: No active account found with the given credentials")

	out, err = resumectl(t, "", "login", "-email", testEmail, "-password", testPassword, "-next", "https://evil.example/")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as a@x.com")
	require.Contains(t, out, "Continue at /\n")

	out, err = resumectl(t, "", "status")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as Ada <a@x.com>")

	out, err = resumectl(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, `"email": "a@x.com"`)

	out, err = resumectl(t, "", "verify")
	require.NoError(t, err)
	require.Equal(t, "Session valid for a@x.com\n", out)

	out, err = resumectl(t, "", "refresh")
	require.NoError(t, err)
	require.Equal(t, "Access token refreshed\n", out)

	out, err = resumectl(t, "", "fetch", "/api/auth/user/")
	require.NoError(t, err)
	require.Contains(t, out, "200 OK")
	require.Contains(t, out, `"first_name":"Ada"`)

	out, err = resumectl(t, "", "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Session ended. Log in again with: resumectl login -next /")

	out, err = resumectl(t, "", "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")

	_, err = resumectl(t, "", "fetch", "/api/auth/user/")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginPrompts(t *testing.T) {
	setupTestFixture(t)

	out, err := resumectl(t, testEmail+"\n"+testPassword+"\n", "login")
	require.NoError(t, err)
	require.Contains(t, out, "Email: Password: Logged in as a@x.com")
}

func TestThemeCommand(t *testing.T) {
	setupTestFixture(t)

	out, err := resumectl(t, "", "theme")
	require.NoError(t, err)
	require.Equal(t, "light\n", out)

	out, err = resumectl(t, "", "theme", "toggle")
	require.NoError(t, err)
	require.Equal(t, "dark\n", out)

	out, err = resumectl(t, "", "status")
	require.NoError(t, err)
	require.Contains(t, out, "theme: dark")

	_, err = resumectl(t, "", "theme", "purple")
	require.Error(t, err)
}

func TestMetricsFlag(t *testing.T) {
	setupTestFixture(t)

	out, err := resumectl(t, "", "-metrics", "login", "-email", testEmail, "-password", testPassword)
	require.NoError(t, err)
	require.Contains(t, out, "# TYPE session_logins_total counter\n")
	require.Contains(t, out, `session_logins_total{result="success"} 1`+"\n")
}

func TestRedisStorage(t *testing.T) {
	setupTestFixture(t)
	mr := miniredis.RunT(t)
	t.Setenv("STORAGE_KIND", config.StorageRedis)
	t.Setenv("REDIS_ADDR", mr.Addr())

	_, err := resumectl(t, "", "login", "-email", testEmail, "-password", testPassword)
	require.NoError(t, err)
	require.True(t, mr.Exists("smart_resume_access_token"))

	out, err := resumectl(t, "", "status")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as Ada")
}

func TestUsage(t *testing.T) {
	_, err := resumectl(t, "")
	require.Error(t, err)

	setupTestFixture(t)
	_, err = resumectl(t, "", "frobnicate")
	require.EqualError(t, err, `unknown command "frobnicate"`)
}
