// Package server is a development stand-in for the Smart Resume Matcher
// auth API. It serves the token, refresh, logout, verify and user endpoints
// with the same bodies as the real backend so the session client can be
// exercised end to end.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/resume-matcher-client/internal/config"
	"github.com/jrsteele09/resume-matcher-client/token"
	"github.com/jrsteele09/resume-matcher-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	grayColor  = "\033[90m"
	resetColor = "\033[0m"
)

// methodColors tint the DEV route listing.
var methodColors = map[string]string{
	http.MethodGet:    "\033[32m",
	http.MethodPost:   "\033[34m",
	http.MethodPut:    "\033[36m",
	http.MethodDelete: "\033[33m",
	http.MethodPatch:  "\033[35m",
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	router chi.Router
	routes []string
	tokens *token.Manager
	users  users.UserRepo
	logger zerolog.Logger
}

type Option func(*Server)

// WithLogger sets the request logger (default: the global zerolog logger).
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(cfg config.EnvConfig, userRepo users.UserRepo, tokens *token.Manager, opts ...Option) *Server {
	s := &Server{
		env:    cfg.GetEnv(),
		router: chi.NewRouter(),
		tokens: tokens,
		users:  userRepo,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Routes lists the registered "METHOD path" patterns.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) handle(method, path string, handler http.Handler) {
	s.routes = append(s.routes, method+" "+path)
	s.router.Method(method, path, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		s.logger.Debug().Msg(routeLine(parts[0], parts[1]))
	}
}

func routeLine(method, path string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = grayColor
	}
	return fmt.Sprintf("[%-19s] %s", color+paddedMethod+resetColor, path)
}
