package storage_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/storage"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("keys use the prefix", func(t *testing.T) {
		s := storage.NewSessionStore(storage.NewMemoryBackend(), "")
		require.Equal(t, storage.Keys{
			Access:  "smart_resume_access_token",
			Refresh: "smart_resume_refresh_token",
			User:    "smart_resume_user_data",
		}, s.Keys())
	})

	t.Run("tokens and user round trip", func(t *testing.T) {
		backend := storage.NewMemoryBackend()
		s := storage.NewSessionStore(backend, "app_")

		pair, err := s.Tokens(ctx)
		require.NoError(t, err)
		require.Empty(t, pair)

		user, err := s.User(ctx)
		require.NoError(t, err)
		require.Nil(t, user)

		require.NoError(t, s.SetTokens(ctx, authapi.TokenPair{Access: "A1", Refresh: "R1"}))
		require.NoError(t, s.SetUser(ctx, authapi.User{"email": "a@x.com"}))

		raw, ok, err := backend.Get(ctx, "app_user_data")
		require.NoError(t, err)
		require.True(t, ok)
		require.JSONEq(t, `{"email":"a@x.com"}`, raw)

		pair, err = s.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, authapi.TokenPair{Access: "A1", Refresh: "R1"}, pair)

		user, err = s.User(ctx)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", user.Email())
	})

	t.Run("empty refresh keeps the stored one", func(t *testing.T) {
		s := storage.NewMemorySessionStore()
		require.NoError(t, s.SetTokens(ctx, authapi.TokenPair{Access: "A1", Refresh: "R1"}))
		require.NoError(t, s.SetTokens(ctx, authapi.TokenPair{Access: "A2"}))

		pair, err := s.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, authapi.TokenPair{Access: "A2", Refresh: "R1"}, pair)
	})

	t.Run("clear removes all three keys", func(t *testing.T) {
		backend := storage.NewMemoryBackend()
		s := storage.NewSessionStore(backend, "")
		require.NoError(t, s.SetTokens(ctx, authapi.TokenPair{Access: "A1", Refresh: "R1"}))
		require.NoError(t, s.SetUser(ctx, authapi.User{"email": "a@x.com"}))
		require.NoError(t, backend.Set(ctx, "theme", "dark"))

		require.NoError(t, s.Clear(ctx))
		require.NoError(t, s.Clear(ctx))

		for _, k := range s.Keys().All() {
			_, ok, err := backend.Get(ctx, k)
			require.NoError(t, err)
			require.False(t, ok, k)
		}
		require.Equal(t, 1, backend.Len())
	})

	t.Run("corrupt user blob", func(t *testing.T) {
		backend := storage.NewMemoryBackend()
		s := storage.NewSessionStore(backend, "")
		require.NoError(t, backend.Set(ctx, s.Keys().User, "{not json"))

		_, err := s.User(ctx)
		require.Error(t, err)
	})
}

func TestThemeStore(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	themes := storage.NewThemeStore(backend)

	theme, err := themes.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, storage.ThemeLight, theme)

	theme, err = themes.Toggle(ctx)
	require.NoError(t, err)
	require.Equal(t, storage.ThemeDark, theme)

	raw, _, err := backend.Get(ctx, "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", raw)

	theme, err = themes.Toggle(ctx)
	require.NoError(t, err)
	require.Equal(t, storage.ThemeLight, theme)

	require.NoError(t, backend.Set(ctx, "theme", "sepia"))
	theme, err = themes.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, storage.ThemeLight, theme)

	_, err = storage.ParseTheme("sepia")
	require.Error(t, err)
}
