package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/resume-matcher-client/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json outside dev", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New("PROD", &buf)

		logger.Debug().Msg("hidden")
		require.Zero(t, buf.Len(), "debug is off outside dev")

		logger.Info().Str("email", "a@x.com").Msg("logged in")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "info", entry["level"])
		require.Equal(t, "logged in", entry["message"])
		require.Equal(t, "a@x.com", entry["email"])
		require.Contains(t, entry, "time")
	})

	t.Run("console in dev", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New("dev", &buf)

		logger.Debug().Msg("refreshing")
		require.Contains(t, buf.String(), "refreshing")
		require.False(t, json.Valid(buf.Bytes()))
	})
}

func TestSetup(t *testing.T) {
	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })

	var buf bytes.Buffer
	logging.Setup("PROD", &buf)
	log.Info().Msg("global")
	require.Contains(t, buf.String(), `"message":"global"`)
}
