package config

import "time"

// TokenConfig is used by the auth stub when issuing tokens.
type TokenConfig interface {
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

type Tokens struct {
	JWTSecret          string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"dev-only-secret"`
	AccessTokenExpiry  time.Duration `yaml:"access_token_expiry" env:"ACCESS_TOKEN_EXPIRY" env-default:"5m"`
	RefreshTokenExpiry time.Duration `yaml:"refresh_token_expiry" env:"REFRESH_TOKEN_EXPIRY" env-default:"168h"`
}

var _ TokenConfig = Tokens{}

func (t Tokens) GetJWTSecret() string {
	return t.JWTSecret
}

func (t Tokens) GetAccessTokenExpiry() time.Duration {
	return t.AccessTokenExpiry
}

func (t Tokens) GetRefreshTokenExpiry() time.Duration {
	return t.RefreshTokenExpiry
}

func (Tokens) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}
