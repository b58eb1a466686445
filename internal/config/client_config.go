package config

import "time"

// Client tunes the session client.
type Client struct {
	HTTPTimeout    time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT" env-default:"15s"`
	VerifyInterval time.Duration `yaml:"verify_interval" env:"VERIFY_INTERVAL" env-default:"2s"`
	CookieMirror   bool          `yaml:"cookie_mirror" env:"COOKIE_MIRROR" env-default:"false"`
	// RefreshSkew enables refreshing ahead of expiry when non-zero.
	RefreshSkew time.Duration `yaml:"refresh_skew" env:"REFRESH_SKEW" env-default:"0s"`
}

var _ ClientConfig = Client{}

func (c Client) GetHTTPTimeout() time.Duration {
	return c.HTTPTimeout
}

func (c Client) GetVerifyInterval() time.Duration {
	return c.VerifyInterval
}

func (c Client) GetCookieMirror() bool {
	return c.CookieMirror
}

func (c Client) GetRefreshSkew() time.Duration {
	return c.RefreshSkew
}
