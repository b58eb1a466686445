package listeners

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/resume-matcher-client/events"
)

const (
	// DefaultLoginPath is where an ended session is sent.
	DefaultLoginPath = "/login/"
	// NextParam carries the page to return to after logging in.
	NextParam = "next"
)

// LogoutRedirect sends the user to the login page when the session ends,
// remembering where they were. It never redirects from the login page
// itself, which would loop.
type LogoutRedirect struct {
	// LoginPath defaults to DefaultLoginPath.
	LoginPath string
	// Current returns the path (and query) the user is on.
	Current func() string
	// Redirect performs the navigation.
	Redirect func(ctx context.Context, target string)
}

// Target returns where to send the user from current, and false when no
// redirect should happen.
func (r *LogoutRedirect) Target(current string) (string, bool) {
	login := r.LoginPath
	if login == "" {
		login = DefaultLoginPath
	}
	if onPage(current, login) {
		return "", false
	}

	next := SafeNext(current)
	if next == "/" {
		return login, true
	}
	return login + "?" + url.Values{NextParam: {next}}.Encode(), true
}

func (r *LogoutRedirect) handle(ctx context.Context, ev events.Event) {
	if ev.Name != events.Logout || r.Redirect == nil {
		return
	}
	current := ""
	if r.Current != nil {
		current = r.Current()
	}
	if target, ok := r.Target(current); ok {
		r.Redirect(ctx, target)
	}
}

// SafeNext returns raw when it is a same-origin relative path and "/"
// otherwise, so a crafted next parameter cannot send the user off site.
func SafeNext(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return raw
}

// NextFromQuery reads the next parameter of a raw query string.
func NextFromQuery(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "/"
	}
	return SafeNext(values.Get(NextParam))
}

func onPage(current, page string) bool {
	path := current
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.TrimSuffix(path, "/") == strings.TrimSuffix(page, "/")
}
