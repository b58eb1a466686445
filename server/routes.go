package server

import (
	"net/http"

	"github.com/jrsteele09/resume-matcher-client/authapi"
)

func (s *Server) initRoutes() {
	s.router.Use(
		s.RequestIDMiddleware,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, `Method "`+r.Method+`" not allowed.`)
	})

	s.handle(http.MethodPost, authapi.PathToken, s.LoginHandler())
	s.handle(http.MethodPost, authapi.PathRefresh, s.RefreshHandler())
	s.handle(http.MethodPost, authapi.PathLogout, s.LogoutHandler())

	// Bearer protected
	s.handle(http.MethodGet, authapi.PathVerify, s.RequireAuth(s.VerifyHandler()))
	s.handle(http.MethodGet, authapi.PathUser, s.RequireAuth(s.UserHandler()))
}
