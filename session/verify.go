package session

import (
	"context"
	"fmt"

	"github.com/jrsteele09/resume-matcher-client/authapi"
)

// VerifyToken asks the backend whether the stored access token is still good
// and refreshes the cached user from its answer. It goes through
// AuthenticatedFetch, so an expired access token is refreshed first.
//
// Calls closer together than the verify interval return the cached user
// without a round trip. A non-success answer logs the session out and
// returns ErrVerificationFailed; transport errors are returned as-is and
// leave the session alone.
func (c *Client) VerifyToken(ctx context.Context) (authapi.User, error) {
	c.verifyMu.Lock()
	defer c.verifyMu.Unlock()

	now := c.nowTime()
	if c.verifyInterval > 0 && !c.lastVerify.IsZero() && now.Sub(c.lastVerify) < c.verifyInterval {
		return c.store.User(ctx)
	}
	c.lastVerify = now

	resp, err := c.Get(ctx, c.endpoint(c.cfg.VerifyPath))
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, &NetworkError{Op: "VerifyToken", Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("session: token verification rejected, logging out")
		if logoutErr := c.Logout(ctx); logoutErr != nil {
			c.logger.Error().Err(logoutErr).Msg("session: logout after failed verification")
		}
		return nil, fmt.Errorf("[VerifyToken] status %d: %w", resp.StatusCode, ErrVerificationFailed)
	}

	user, err := authapi.DecodeVerifyBody(body)
	if err != nil {
		return nil, fmt.Errorf("[VerifyToken] decode response: %w", err)
	}
	if err := c.store.SetUser(ctx, user); err != nil {
		return nil, fmt.Errorf("[VerifyToken] store user: %w", err)
	}
	return user, nil
}
