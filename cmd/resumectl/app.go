package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/resume-matcher-client/events"
	"github.com/jrsteele09/resume-matcher-client/internal/config"
	"github.com/jrsteele09/resume-matcher-client/listeners"
	"github.com/jrsteele09/resume-matcher-client/session"
	"github.com/jrsteele09/resume-matcher-client/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog/log"
)

// app is one invocation's wiring: storage, session client, listeners.
type app struct {
	client   *session.Client
	store    *storage.SessionStore
	theme    *storage.ThemeStore
	nav      *listeners.Navigation
	registry *prometheus.Registry
	in       io.Reader
	out      io.Writer
	closers  []func() error
}

func newApp(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) (*app, error) {
	a := &app{in: in, out: out, registry: prometheus.NewRegistry()}

	backend, err := a.openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = storage.NewSessionStore(backend, cfg.GetStoragePrefix())
	a.theme = storage.NewThemeStore(backend)

	bus := events.NewBus(log.Logger)
	a.nav = listeners.NewNavigation(func(s listeners.NavState) {
		log.Debug().Bool("authenticated", s.Authenticated).Str("name", s.Name).Msg("navigation updated")
	})
	listeners.Install(bus, a.nav, &listeners.LogoutRedirect{
		Current: func() string { return "/" },
		Redirect: func(_ context.Context, target string) {
			fmt.Fprintf(a.out, "Session ended. Log in again with: resumectl login -next %s\n", listeners.NextFromQuery(queryOf(target)))
		},
	})

	opts := []session.Option{
		session.WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		session.WithBus(bus),
		session.WithVerifyInterval(cfg.GetVerifyInterval()),
		session.WithMetrics(session.NewMetrics(a.registry)),
	}
	if cfg.GetCookieMirror() {
		opts = append(opts, session.WithCookieMirror(nil))
	}
	if skew := cfg.GetRefreshSkew(); skew > 0 {
		opts = append(opts, session.WithProactiveRefresh(skew))
	}

	a.client, err = session.New(session.Config{BaseURL: cfg.GetBaseURL()}, a.store, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	snap, err := a.client.Snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("reading stored session")
	}
	a.nav.Sync(snap.Authenticated, snap.User)
	return a, nil
}

func (a *app) openBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.GetStorageKind() {
	case config.StorageMemory:
		return storage.NewMemoryBackend(), nil
	case config.StorageRedis:
		rc, err := storage.DialRedis(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)
		return storage.NewRedisBackend(rc), nil
	default:
		return storage.NewFileBackend(cfg.GetStoragePath(), cfg.GetStoragePassphrase())
	}
}

func (a *app) Close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			log.Warn().Err(err).Msg("closing storage")
		}
	}
	a.closers = nil
}

// printMetrics writes every metric gathered during the command in the
// Prometheus text exposition format.
func (a *app) printMetrics() {
	families, err := a.registry.Gather()
	if err != nil {
		log.Warn().Err(err).Msg("gathering metrics")
		return
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.out, mf); err != nil {
			log.Warn().Err(err).Str("family", mf.GetName()).Msg("writing metrics")
			return
		}
	}
}

func queryOf(target string) string {
	_, query, _ := strings.Cut(target, "?")
	return query
}
