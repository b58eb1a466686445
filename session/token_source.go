package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// AccessTokenExpiry reads the exp claim of a JWT access token without
// verifying its signature. ok is false for opaque tokens or a missing claim.
func AccessTokenExpiry(raw string) (time.Time, bool) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// expiresSoon is false for tokens whose expiry cannot be read; those are
// left to the 401 path.
func (c *Client) expiresSoon(access string) bool {
	exp, ok := AccessTokenExpiry(access)
	if !ok {
		return false
	}
	return !c.nowTime().Add(c.refreshSkew).Before(exp)
}

// TokenSource adapts the session to oauth2.TokenSource so the stored
// credentials can drive an oauth2.NewClient transport. Expired JWTs are
// refreshed through RefreshAccessToken, sharing its single-flight and
// forced-logout behaviour.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	c := ts.client
	pair, err := c.store.Tokens(ts.ctx)
	if err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, ErrMissingCredential
	}

	if c.expiresSoon(pair.Access) {
		if _, err := c.RefreshAccessToken(ts.ctx); err != nil {
			return nil, err
		}
		if pair, err = c.store.Tokens(ts.ctx); err != nil {
			return nil, err
		}
	}

	token := &oauth2.Token{
		AccessToken:  pair.Access,
		TokenType:    "Bearer",
		RefreshToken: pair.Refresh,
	}
	if exp, ok := AccessTokenExpiry(pair.Access); ok {
		token.Expiry = exp
	}
	return token, nil
}
