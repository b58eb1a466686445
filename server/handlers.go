package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/internal/errors"
	"github.com/jrsteele09/resume-matcher-client/internal/utils"
)

const (
	maxBodyBytes = 64 << 10

	detailBadCredentials = "No active account found with the given credentials"
	detailRefreshInvalid = "Token is invalid or expired"
	detailRefreshMissing = "Refresh token is required"
	fieldRequired        = "This field is required."
)

// loginBody accepts "username" as an alias of "email".
type loginBody struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler exchanges email and password for a token pair and the user.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in loginBody
		if err := decodeBody(w, r, &in); err != nil {
			s.writeDecodeError(w, r, err)
			return
		}

		email := strings.TrimSpace(utils.FirstNonEmpty(in.Email, in.Username))
		missing := map[string][]string{}
		if email == "" {
			missing["email"] = []string{fieldRequired}
		}
		if in.Password == "" {
			missing["password"] = []string{fieldRequired}
		}
		if len(missing) > 0 {
			writeJSON(w, http.StatusBadRequest, missing)
			return
		}

		user, pair, err := s.tokens.Authenticate(email, in.Password)
		switch {
		case errors.Is(err, errors.ErrInvalidCredentials), errors.Is(err, errors.ErrUserInactive):
			writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
			return
		case err != nil:
			s.logger.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("login")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}

		writeJSON(w, http.StatusOK, authapi.LoginResponse{
			Access:  pair.Access,
			Refresh: pair.Refresh,
			User:    user.Profile(),
		})
	}
}

// RefreshHandler rotates the refresh token and issues a new access token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in authapi.RefreshRequest
		if err := decodeBody(w, r, &in); err != nil {
			s.writeDecodeError(w, r, err)
			return
		}
		if in.Refresh == "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {fieldRequired}})
			return
		}

		_, pair, err := s.tokens.Refresh(in.Refresh)
		if err != nil {
			s.logger.Debug().Err(err).Str("request_id", RequestID(r.Context())).Msg("refresh rejected")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": detailRefreshInvalid,
				"code":   codeTokenNotValid,
			})
			return
		}

		writeJSON(w, http.StatusOK, authapi.RefreshResponse{Access: pair.Access, Refresh: pair.Refresh})
	}
}

// LogoutHandler revokes the posted refresh token, and the access token too
// when one is sent as a Bearer credential. Unknown tokens still succeed.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		if err := decodeBody(w, r, &in); err != nil {
			s.writeDecodeError(w, r, err)
			return
		}

		refresh := ""
		for _, key := range []string{"refresh", "refresh_token", "refreshToken"} {
			if v, ok := in[key].(string); ok && v != "" {
				refresh = v
				break
			}
		}
		if refresh == "" {
			writeDetail(w, http.StatusBadRequest, detailRefreshMissing)
			return
		}

		s.tokens.Logout(refresh, s.optionalClaims(r))
		writeDetail(w, http.StatusOK, "Successfully logged out.")
	}
}

// VerifyHandler confirms the Bearer token and returns its user.
func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, detailNoCredentials)
			return
		}
		writeJSON(w, http.StatusOK, authapi.VerifyResponse{Valid: true, User: user.Profile()})
	}
}

// UserHandler returns the Bearer token's user object.
func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, detailNoCredentials)
			return
		}
		writeJSON(w, http.StatusOK, user.Profile())
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, authapi.ErrorResponse{Detail: detail})
}

// decodeBody reads a JSON body of at most maxBodyBytes. An empty body
// decodes as the zero value. Every failure wraps errors.ErrInvalidRequest.
func decodeBody(w http.ResponseWriter, r *http.Request, value any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidRequest, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, value); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidRequest, err)
	}
	return nil
}

// writeDecodeError answers a body decodeBody rejected.
func (s *Server) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Debug().Err(err).Str("request_id", RequestID(r.Context())).Msg("rejected request body")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	writeDetail(w, http.StatusBadRequest, "JSON parse error")
}
