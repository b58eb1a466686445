package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/resume-matcher-client/authapi"
)

// RefreshAccessToken trades the stored refresh token for a new pair and
// returns the new access token.
//
// At most one refresh is on the wire per Client: callers arriving while one
// is outstanding wait for it and receive the same result. The shared call
// does not inherit any single caller's cancellation; a caller whose ctx ends
// stops waiting and gets ctx.Err().
//
// Any failure other than ErrMissingCredential logs the session out before
// returning *RefreshError, since a rejected refresh token cannot be recovered.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	ch := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	pair, err := c.store.Tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("[RefreshAccessToken] read tokens: %w", err)
	}
	if pair.Refresh == "" {
		c.metrics.refresh("missing")
		return "", ErrMissingCredential
	}

	next, err := c.requestRefresh(ctx, pair.Refresh)
	if err != nil {
		c.metrics.refresh("failed")
		c.logger.Warn().Err(err).Msg("session: token refresh failed, logging out")
		if logoutErr := c.Logout(ctx); logoutErr != nil {
			c.logger.Error().Err(logoutErr).Msg("session: logout after refresh failure")
		}
		return "", err
	}

	if next.Refresh == "" {
		next.Refresh = pair.Refresh
	}
	if err := c.store.SetTokens(ctx, next); err != nil {
		c.metrics.refresh("failed")
		return "", fmt.Errorf("[RefreshAccessToken] store tokens: %w", err)
	}
	c.cookies.SetTokens(next)

	c.metrics.refresh("success")
	c.logger.Debug().Bool("rotated", next.Refresh != pair.Refresh).Msg("session: access token refreshed")
	return next.Access, nil
}

func (c *Client) requestRefresh(ctx context.Context, refresh string) (authapi.TokenPair, error) {
	resp, err := c.postJSON(ctx, "RefreshAccessToken", c.cfg.RefreshPath, authapi.RefreshRequest{Refresh: refresh})
	if err != nil {
		return authapi.TokenPair{}, &RefreshError{Err: err}
	}

	body, err := readBody(resp)
	if err != nil {
		return authapi.TokenPair{}, &RefreshError{Err: &NetworkError{Op: "RefreshAccessToken", Err: err}}
	}
	if !isSuccess(resp.StatusCode) {
		return authapi.TokenPair{}, &RefreshError{Status: resp.StatusCode}
	}

	var data authapi.RefreshResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return authapi.TokenPair{}, &RefreshError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if data.Access == "" {
		return authapi.TokenPair{}, &RefreshError{Err: fmt.Errorf("response carries no access token")}
	}
	return authapi.TokenPair{Access: data.Access, Refresh: data.Refresh}, nil
}
