// Package session is the authenticated-session client for the Smart Resume
// Matcher API. It owns the bearer token pair and the cached user profile,
// logs in and out, refreshes the access token on 401 and announces
// lifecycle changes on an events bus.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// maxAuthBody caps how much of an auth endpoint response is read.
	maxAuthBody = 1 << 20

	requestIDHeader = "X-Request-ID"
	refreshKey      = "refresh"
)

// Client is safe for concurrent use.
type Client struct {
	cfg     Config
	base    *url.URL
	store   Store
	http    *http.Client
	bus     events.Publisher
	logger  zerolog.Logger
	cookies *CookieMirror
	metrics *Metrics
	nowTime func() time.Time

	verifyInterval time.Duration
	refreshSkew    time.Duration
	proactive      bool

	refreshGroup singleflight.Group

	verifyMu   sync.Mutex
	lastVerify time.Time
}

// Option customises a Client.
type Option func(*options)

type options struct {
	httpClient     *http.Client
	bus            events.Publisher
	logger         *zerolog.Logger
	mirrorCookies  bool
	jar            http.CookieJar
	metrics        *Metrics
	nowTime        func() time.Time
	verifyInterval *time.Duration
	proactive      bool
	refreshSkew    time.Duration
}

// WithHTTPClient sets the transport used for every call. The client is
// copied, so a cookie jar added by WithCookieMirror does not leak back.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithBus sets where login/logout notifications go.
func WithBus(bus events.Publisher) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithLogger sets the client logger (default: the global zerolog logger).
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithCookieMirror copies tokens into access_token/refresh_token cookies for
// the base URL. A nil jar means the HTTP client's jar, or a new one.
func WithCookieMirror(jar http.CookieJar) Option {
	return func(o *options) {
		o.mirrorCookies = true
		o.jar = jar
	}
}

// WithMetrics records client counters.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(o *options) {
		o.nowTime = nowFunc
	}
}

// WithVerifyInterval sets the minimum gap between verify round trips.
// Zero disables throttling.
func WithVerifyInterval(d time.Duration) Option {
	return func(o *options) {
		o.verifyInterval = &d
	}
}

// WithProactiveRefresh refreshes before sending when the access token's
// exp claim is within skew of now, instead of waiting for a 401.
func WithProactiveRefresh(skew time.Duration) Option {
	return func(o *options) {
		o.proactive = true
		o.refreshSkew = skew
	}
}

// New creates a Client for the backend described by cfg, persisting into store.
func New(cfg Config, store Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("[session New] store is required")
	}
	cfg = cfg.withDefaults()
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("[session New] %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	hc := http.Client{}
	if o.httpClient != nil {
		hc = *o.httpClient
	}

	c := &Client{
		cfg:            cfg,
		base:           base,
		store:          store,
		bus:            o.bus,
		logger:         log.Logger,
		metrics:        o.metrics,
		nowTime:        time.Now,
		verifyInterval: DefaultVerifyInterval,
		proactive:      o.proactive,
		refreshSkew:    o.refreshSkew,
	}
	if o.logger != nil {
		c.logger = *o.logger
	}
	if o.nowTime != nil {
		c.nowTime = o.nowTime
	}
	if o.verifyInterval != nil {
		c.verifyInterval = *o.verifyInterval
	}

	if o.mirrorCookies {
		jar := o.jar
		if jar == nil {
			jar = hc.Jar
		}
		if jar == nil {
			if jar, err = cookiejar.New(nil); err != nil {
				return nil, fmt.Errorf("[session New] cookie jar: %w", err)
			}
		}
		if hc.Jar == nil {
			hc.Jar = jar
		}
		c.cookies = newCookieMirror(jar, base, c.nowTime)
	}
	c.http = &hc

	return c, nil
}

// Cookies returns the cookie mirror, nil when mirroring is off.
func (c *Client) Cookies() *CookieMirror {
	return c.cookies
}

// IsAuthenticated reports whether both an access and a refresh token are stored.
// A lone access token cannot be renewed, so it does not count as a session.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	pair, err := c.store.Tokens(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("session: reading tokens")
		return false
	}
	return pair.Access != "" && pair.Refresh != ""
}

// CurrentUser returns the cached user, nil when logged out.
func (c *Client) CurrentUser(ctx context.Context) (authapi.User, error) {
	return c.store.User(ctx)
}

// Snapshot is the full persisted state at one point in time.
type Snapshot struct {
	Authenticated bool
	User          authapi.User
	AccessToken   string
	RefreshToken  string
}

// Snapshot reads tokens and user together.
func (c *Client) Snapshot(ctx context.Context) (Snapshot, error) {
	pair, err := c.store.Tokens(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	user, err := c.store.User(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Authenticated: pair.Access != "" && pair.Refresh != "",
		User:          user,
		AccessToken:   pair.Access,
		RefreshToken:  pair.Refresh,
	}, nil
}

func (c *Client) publish(ctx context.Context, ev events.Event) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(ctx, ev)
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

// postJSON sends body to an auth endpoint. Transport failures come back as *NetworkError.
func (c *Client) postJSON(ctx context.Context, op, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("[%s] encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("[%s] build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxAuthBody))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxAuthBody))
	resp.Body.Close()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
