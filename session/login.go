package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/events"
)

// Login exchanges credentials for a token pair. On success the tokens and
// user are stored (and mirrored into cookies) before the login event is
// published, so listeners always read fresh state. A rejection returns
// *AuthenticationError carrying the server's message.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*authapi.LoginResponse, error) {
	resp, err := c.postJSON(ctx, "Login", c.cfg.TokenPath, authapi.LoginRequest{
		Email:    identifier,
		Password: secret,
	})
	if err != nil {
		c.metrics.login("error")
		return nil, err
	}

	body, err := readBody(resp)
	if err != nil {
		c.metrics.login("error")
		return nil, &NetworkError{Op: "Login", Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		c.metrics.login("rejected")
		return nil, &AuthenticationError{
			Status:  resp.StatusCode,
			Message: authapi.ErrorMessage(body, authapi.FallbackLoginMessage),
		}
	}

	var data authapi.LoginResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.metrics.login("error")
		return nil, fmt.Errorf("[Login] decode response: %w", err)
	}
	if data.Access == "" || data.Refresh == "" {
		c.metrics.login("error")
		return nil, fmt.Errorf("[Login] response must carry both access and refresh tokens")
	}

	if err := c.store.SetTokens(ctx, data.Tokens()); err != nil {
		c.metrics.login("error")
		return nil, fmt.Errorf("[Login] store tokens: %w", err)
	}
	if err := c.store.SetUser(ctx, data.User); err != nil {
		c.metrics.login("error")
		// Tokens without their user are not a session.
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("session: clearing tokens after failed user write")
		}
		return nil, fmt.Errorf("[Login] store user: %w", err)
	}
	c.cookies.SetTokens(data.Tokens())

	c.metrics.login("success")
	c.logger.Debug().Str("email", data.User.Email()).Msg("session: logged in")
	c.publish(ctx, events.Event{Name: events.Login, User: data.User})
	return &data, nil
}

// Logout asks the server to invalidate the refresh token, then clears the
// stored session and cookies and publishes the logout event. The server
// call is best effort: its failure is logged and never blocks the local
// logout. Calling Logout with nothing stored is harmless.
// The only error returned is a failure to clear the store.
func (c *Client) Logout(ctx context.Context) error {
	pair, err := c.store.Tokens(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("session: reading tokens for logout")
	}

	if pair.Refresh != "" {
		c.invalidate(ctx, pair.Refresh)
	}

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("[Logout] clear store: %w", err)
	}
	c.cookies.Clear()

	c.metrics.logout()
	c.logger.Debug().Msg("session: logged out")
	c.publish(ctx, events.Event{Name: events.Logout})
	return nil
}

func (c *Client) invalidate(ctx context.Context, refresh string) {
	resp, err := c.postJSON(ctx, "Logout", c.cfg.LogoutPath, authapi.RefreshRequest{Refresh: refresh})
	if err != nil {
		c.logger.Warn().Err(err).Msg("session: logout endpoint unreachable, continuing with local logout")
		return
	}
	defer drain(resp)
	if !isSuccess(resp.StatusCode) {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("session: logout endpoint rejected the refresh token")
	}
}
