package session

import (
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/resume-matcher-client/authapi"
)

// Cookie names and lifetimes of the mirrored token pair.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	AccessCookieTTL  = 24 * time.Hour
	RefreshCookieTTL = 7 * 24 * time.Hour
)

// CookieMirror writes the token pair into cookies scoped to the backend so
// server-rendered pages can authenticate without the bearer header.
// A nil *CookieMirror ignores every call.
type CookieMirror struct {
	jar     http.CookieJar
	base    *url.URL
	nowTime func() time.Time
}

func newCookieMirror(jar http.CookieJar, base *url.URL, now func() time.Time) *CookieMirror {
	return &CookieMirror{jar: jar, base: base, nowTime: now}
}

// Jar returns the jar the cookies are written to.
func (m *CookieMirror) Jar() http.CookieJar {
	if m == nil {
		return nil
	}
	return m.jar
}

// SetTokens writes both cookies. An empty refresh token leaves the refresh
// cookie untouched.
func (m *CookieMirror) SetTokens(pair authapi.TokenPair) {
	if m == nil {
		return
	}
	cookies := []*http.Cookie{m.cookie(AccessCookie, pair.Access, AccessCookieTTL)}
	if pair.Refresh != "" {
		cookies = append(cookies, m.cookie(RefreshCookie, pair.Refresh, RefreshCookieTTL))
	}
	m.jar.SetCookies(m.base, cookies)
}

// Clear expires both cookies.
func (m *CookieMirror) Clear() {
	if m == nil {
		return
	}
	m.jar.SetCookies(m.base, []*http.Cookie{
		m.expired(AccessCookie),
		m.expired(RefreshCookie),
	})
}

// Tokens reads the pair back from the jar as it would be sent to the base URL.
func (m *CookieMirror) Tokens() authapi.TokenPair {
	var pair authapi.TokenPair
	if m == nil {
		return pair
	}
	for _, ck := range m.jar.Cookies(m.base) {
		switch ck.Name {
		case AccessCookie:
			pair.Access = ck.Value
		case RefreshCookie:
			pair.Refresh = ck.Value
		}
	}
	return pair
}

func (m *CookieMirror) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  m.nowTime().Add(ttl),
		MaxAge:   int(ttl / time.Second),
		Secure:   m.base.Scheme == "https",
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *CookieMirror) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   m.base.Scheme == "https",
		SameSite: http.SameSiteLaxMode,
	}
}
