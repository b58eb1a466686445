// Package authapi holds the JSON bodies exchanged with the Smart Resume
// Matcher auth endpoints. Both the session client and the stub server use
// these types so the two sides cannot drift apart.
package authapi

import "encoding/json"

// Default endpoint paths of the backend auth API.
const (
	PathToken   = "/api/auth/token/"
	PathRefresh = "/api/auth/token/refresh/"
	PathLogout  = "/api/auth/logout/"
	PathVerify  = "/api/auth/verify/"
	PathUser    = "/api/auth/user/"
)

// TokenPair is the bearer pair issued at login and rotated on refresh.
type TokenPair struct {
	// Access is the short-lived bearer credential sent on every request.
	// Usage: "Authorization: Bearer <access>"
	Access string `json:"access"`

	// Refresh is the longer-lived credential exchanged for a new pair.
	// The server may rotate it on every refresh, so an empty value in a
	// refresh response means "keep the one you have".
	Refresh string `json:"refresh,omitempty"`
}

// LoginRequest is the body of POST PathToken.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST PathToken.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// Tokens returns the pair carried by the login response.
func (r *LoginResponse) Tokens() TokenPair {
	return TokenPair{Access: r.Access, Refresh: r.Refresh}
}

// RefreshRequest is the body of POST PathRefresh and POST PathLogout.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse is the success body of POST PathRefresh. The backend
// may attach the current user, which the client ignores.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
	User    User   `json:"user,omitempty"`
}

// VerifyResponse is the wrapped form of the GET PathVerify body.
// Some deployments return the user object directly instead.
type VerifyResponse struct {
	Valid bool `json:"valid"`
	User  User `json:"user"`
}

// DecodeVerifyBody accepts either {"user": {...}} or the bare user object.
func DecodeVerifyBody(body []byte) (User, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if wrapped, ok := raw["user"]; ok {
		var user User
		if err := json.Unmarshal(wrapped, &user); err != nil {
			return nil, err
		}
		return user, nil
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, err
	}
	return user, nil
}
