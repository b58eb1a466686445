package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// AuthenticatedFetch sends req with the stored access token as a bearer
// credential. Caller headers are kept; Authorization is always replaced.
// A relative req.URL is resolved against the base URL.
//
// On 401 it performs exactly one RefreshAccessToken and retries the request
// once with the new token. If the refresh fails, including for want of a
// refresh token, the session is logged out and the error returned. Every
// other response, including a 401 to the retry, is returned as-is for the
// caller to interpret.
//
// With no stored access token it returns ErrMissingCredential without
// touching the network.
func (c *Client) AuthenticatedFetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	pair, err := c.store.Tokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("[AuthenticatedFetch] read tokens: %w", err)
	}
	access := pair.Access
	if access == "" {
		return nil, ErrMissingCredential
	}

	if c.proactive && c.expiresSoon(access) {
		if access, err = c.RefreshAccessToken(ctx); err != nil {
			return nil, err
		}
	}

	out, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(out, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drain(resp)

	c.metrics.unauthorizedRetry()
	access, err = c.RefreshAccessToken(ctx)
	if err != nil {
		// A rejected access token with no refresh token is a dead session.
		// Other refresh failures have already logged out.
		if errors.Is(err, ErrMissingCredential) {
			if logoutErr := c.Logout(ctx); logoutErr != nil {
				c.logger.Error().Err(logoutErr).Msg("session: logout after 401 without refresh token")
			}
		}
		return nil, err
	}

	retry, err := c.rewind(ctx, out)
	if err != nil {
		return nil, err
	}
	return c.send(retry, access)
}

// Get is AuthenticatedFetch for a GET of rawURL.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("[Get] build request: %w", err)
	}
	return c.AuthenticatedFetch(ctx, req)
}

// PostJSON is AuthenticatedFetch for a POST of v encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, rawURL string, v any) (*http.Response, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("[PostJSON] encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("[PostJSON] build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.AuthenticatedFetch(ctx, req)
}

// prepare clones req onto ctx, resolves its URL and buffers a body that
// cannot be replayed so the 401 retry can resend it.
func (c *Client) prepare(ctx context.Context, req *http.Request) (*http.Request, error) {
	out := req.Clone(ctx)

	if !out.URL.IsAbs() {
		out.URL = c.base.ResolveReference(out.URL)
		out.Host = out.URL.Host
	}

	if out.Body != nil && out.Body != http.NoBody && out.GetBody == nil {
		buf, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("[AuthenticatedFetch] buffer body: %w", err)
		}
		out.ContentLength = int64(len(buf))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
		out.Body, _ = out.GetBody()
	}

	if out.Header.Get("Content-Type") == "" && out.ContentLength != 0 {
		out.Header.Set("Content-Type", "application/json")
	}
	if out.Header.Get(requestIDHeader) == "" {
		out.Header.Set(requestIDHeader, uuid.NewString())
	}
	return out, nil
}

func (c *Client) rewind(ctx context.Context, req *http.Request) (*http.Request, error) {
	retry := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("[AuthenticatedFetch] rewind body: %w", err)
		}
		retry.Body = body
	}
	return retry, nil
}

func (c *Client) send(req *http.Request, access string) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "AuthenticatedFetch", Err: err}
	}
	return resp, nil
}
