// Package logging builds the zerolog logger shared by the commands.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DevEnv is the ENV value that selects human readable console output.
const DevEnv = "DEV"

// New returns a logger writing to w: coloured console lines at debug level
// in DEV, JSON at info level anywhere else.
func New(env string, w io.Writer) zerolog.Logger {
	if strings.EqualFold(env, DevEnv) {
		out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// Setup makes New(env, w) the global logger used through the log package.
func Setup(env string, w io.Writer) zerolog.Logger {
	log.Logger = New(env, w)
	return log.Logger
}
