package session

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/resume-matcher-client/authapi"
)

const (
	// DefaultVerifyInterval is the minimum gap between two verify round trips.
	DefaultVerifyInterval = 2 * time.Second
)

// Config locates the backend auth endpoints.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://matcher.example.com".
	BaseURL string

	// Endpoint paths. Empty values fall back to the authapi defaults.
	TokenPath   string
	RefreshPath string
	LogoutPath  string
	VerifyPath  string
}

func (c Config) withDefaults() Config {
	if c.TokenPath == "" {
		c.TokenPath = authapi.PathToken
	}
	if c.RefreshPath == "" {
		c.RefreshPath = authapi.PathRefresh
	}
	if c.LogoutPath == "" {
		c.LogoutPath = authapi.PathLogout
	}
	if c.VerifyPath == "" {
		c.VerifyPath = authapi.PathVerify
	}
	return c
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL has no host: %q", raw)
	}
	return u, nil
}
