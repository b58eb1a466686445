package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/resume-matcher-client/token"
	"github.com/jrsteele09/resume-matcher-client/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyRequestID stores the request id
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyClaims stores the verified access-token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyUser stores the user the access token belongs to
	ContextKeyUser ContextKey = "user"
)

const (
	detailNoCredentials = "Authentication credentials were not provided."
	detailTokenInvalid  = "Given token not valid for any token type"
	codeTokenNotValid   = "token_not_valid"
)

// RequireAuth validates the Bearer access token and injects its claims and
// user into the request context. Failures are 401 with a {detail} body.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			writeDetail(w, http.StatusUnauthorized, detailNoCredentials)
			return
		}

		claims, err := s.tokens.Verify(raw)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": detailTokenInvalid,
				"code":   codeTokenNotValid,
			})
			return
		}

		user, err := s.tokens.UserFor(claims)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "User not found or inactive",
				"code":   "user_not_found",
			})
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
		ctx = context.WithValue(ctx, ContextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}

// optionalClaims verifies a Bearer token when one is sent; logout works
// with or without it.
func (s *Server) optionalClaims(r *http.Request) *token.Claims {
	raw, ok := bearerToken(r)
	if !ok {
		return nil
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil
	}
	return claims
}

func userFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok
}
