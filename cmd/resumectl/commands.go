package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/resume-matcher-client/internal/config"
	"github.com/jrsteele09/resume-matcher-client/internal/utils"
	"github.com/jrsteele09/resume-matcher-client/listeners"
	"github.com/jrsteele09/resume-matcher-client/session"
	"github.com/jrsteele09/resume-matcher-client/storage"
)

// maxPrintedBody caps how much of a fetched response is echoed.
const maxPrintedBody = 1 << 20

var errNotLoggedIn = errors.New("not logged in; run: resumectl login")

func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	commands := map[string]func(context.Context, []string) error{
		"login":   a.login,
		"logout":  a.logout,
		"whoami":  a.whoami,
		"verify":  a.verify,
		"refresh": a.refresh,
		"fetch":   a.fetch,
		"status":  a.status,
		"theme":   a.themeCmd,
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd(ctx, args)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", config.GetEnv("RESUMECTL_EMAIL", ""), "account email")
	password := fs.String("password", config.GetEnv("RESUMECTL_PASSWORD", ""), "account password (prompted when empty)")
	next := fs.String("next", "", "page to continue at after login")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(a.in)
	if *email == "" {
		*email = a.prompt(reader, "Email: ")
	}
	if *password == "" {
		*password = a.prompt(reader, "Password: ")
	}

	resp, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		var authErr *session.AuthenticationError
		if errors.As(err, &authErr) {
			return fmt.Errorf("login failed: %s", authErr.Message)
		}
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", utils.FirstNonEmpty(resp.User.Email(), resp.User.DisplayName()))
	if *next != "" {
		fmt.Fprintf(a.out, "Continue at %s\n", listeners.SafeNext(*next))
	}
	return nil
}

func (a *app) prompt(reader *bufio.Reader, label string) string {
	fmt.Fprint(a.out, label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) logout(ctx context.Context, _ []string) error {
	return a.client.Logout(ctx)
}

func (a *app) whoami(ctx context.Context, _ []string) error {
	if !a.client.IsAuthenticated(ctx) {
		return errNotLoggedIn
	}
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(user)
}

func (a *app) verify(ctx context.Context, _ []string) error {
	user, err := a.client.VerifyToken(ctx)
	switch {
	case errors.Is(err, session.ErrMissingCredential):
		return errNotLoggedIn
	case err != nil:
		return err
	}
	fmt.Fprintf(a.out, "Session valid for %s\n", user.Email())
	return nil
}

func (a *app) refresh(ctx context.Context, _ []string) error {
	if _, err := a.client.RefreshAccessToken(ctx); err != nil {
		if errors.Is(err, session.ErrMissingCredential) {
			return errNotLoggedIn
		}
		return err
	}
	fmt.Fprintln(a.out, "Access token refreshed")
	return nil
}

func (a *app) fetch(ctx context.Context, args []string) error {
	fs := newFlagSet("fetch")
	method := fs.String("X", http.MethodGet, "HTTP method")
	data := fs.String("d", "", "JSON request body")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("fetch needs exactly one path or URL")
	}

	var body io.Reader
	if *data != "" {
		if !json.Valid([]byte(*data)) {
			return fmt.Errorf("-d is not valid JSON")
		}
		body = strings.NewReader(*data)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(*method), fs.Arg(0), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.AuthenticatedFetch(ctx, req)
	switch {
	case errors.Is(err, session.ErrMissingCredential):
		return errNotLoggedIn
	case err != nil:
		return err
	}
	defer resp.Body.Close()

	fmt.Fprintln(a.out, resp.Status)
	if _, err := io.Copy(a.out, io.LimitReader(resp.Body, maxPrintedBody)); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

func (a *app) status(ctx context.Context, _ []string) error {
	theme, err := a.theme.Get(ctx)
	if err != nil {
		return err
	}
	nav := a.nav.State()
	if !nav.Authenticated {
		fmt.Fprintf(a.out, "Not logged in\ntheme: %s\n", theme)
		return nil
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\ntheme: %s\n", nav.Name, nav.Email, theme)
	return nil
}

func (a *app) themeCmd(ctx context.Context, args []string) error {
	var (
		theme storage.Theme
		err   error
	)
	switch {
	case len(args) == 0:
		theme, err = a.theme.Get(ctx)
	case args[0] == "toggle":
		theme, err = a.theme.Toggle(ctx)
	default:
		if theme, err = storage.ParseTheme(args[0]); err == nil {
			err = a.theme.Set(ctx, theme)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, theme)
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
