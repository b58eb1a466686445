// Package token issues and checks the stub server's credentials: HS256 JWT
// access tokens with an exp claim, paired with rotating opaque refresh
// tokens from the refresh package.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/resume-matcher-client/authapi"
	"github.com/jrsteele09/resume-matcher-client/internal/config"
	"github.com/jrsteele09/resume-matcher-client/internal/errors"
	"github.com/jrsteele09/resume-matcher-client/token/refresh"
	"github.com/jrsteele09/resume-matcher-client/users"
)

const tokenTypeAccess = "access"

// Claims is the verified content of an access token.
type Claims struct {
	UserID    string
	Email     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Manager struct {
	signer            Signer
	refresh           *refresh.Manager
	userRepo          users.UserRepo
	denylist          Denylist
	issuer            string
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithDenylist(d Denylist) ManagerOption {
	return func(m *Manager) {
		m.denylist = d
	}
}

func New(cfg config.TokenConfig, userRepo users.UserRepo, refreshManager *refresh.Manager, signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:            signer,
		refresh:           refreshManager,
		userRepo:          userRepo,
		denylist:          NewMemoryDenylist(),
		accessTokenExpiry: cfg.GetAccessTokenExpiry(),
		nowFunc:           time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = 5 * time.Minute
	}
	return m
}

// AccessTokenExpiry is the lifetime of issued access tokens.
func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

// Authenticate checks email and password and issues a new pair.
func (m *Manager) Authenticate(email, password string) (*users.User, authapi.TokenPair, error) {
	user, err := m.userRepo.GetByEmail(email)
	if err != nil || !user.CheckPassword(password) {
		return nil, authapi.TokenPair{}, errors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, authapi.TokenPair{}, errors.ErrUserInactive
	}

	pair, err := m.IssuePair(user)
	if err != nil {
		return nil, authapi.TokenPair{}, err
	}
	if err := m.userRepo.SetLastLogin(user.Email, m.nowFunc()); err != nil {
		return nil, authapi.TokenPair{}, fmt.Errorf("[Manager Authenticate] last login: %w", err)
	}
	return user, pair, nil
}

// IssuePair creates an access token and a refresh token for user.
func (m *Manager) IssuePair(user *users.User) (authapi.TokenPair, error) {
	access, err := m.CreateAccessToken(user)
	if err != nil {
		return authapi.TokenPair{}, err
	}
	refreshToken, err := m.refresh.Create(user.ID)
	if err != nil {
		return authapi.TokenPair{}, fmt.Errorf("[Manager IssuePair] %w", err)
	}
	return authapi.TokenPair{Access: access, Refresh: refreshToken}, nil
}

// CreateAccessToken signs a short-lived access token for user.
func (m *Manager) CreateAccessToken(user *users.User) (string, error) {
	now := m.nowFunc()
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"email":      user.Email,
		"token_type": tokenTypeAccess,
		"iat":        now.Unix(),
		"exp":        now.Add(m.accessTokenExpiry).Unix(),
		"jti":        uuid.NewString(),
	}
	if m.issuer != "" {
		claims["iss"] = m.issuer
	}
	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("[Manager CreateAccessToken] %w", err)
	}
	return signed, nil
}

// Refresh rotates refreshToken and issues a new access token with it.
func (m *Manager) Refresh(refreshToken string) (*users.User, authapi.TokenPair, error) {
	rt, err := m.refresh.Validate(refreshToken)
	if err != nil {
		return nil, authapi.TokenPair{}, err
	}
	user, err := m.userRepo.GetByID(rt.UserID)
	if err != nil {
		return nil, authapi.TokenPair{}, errors.ErrInvalidRefreshToken
	}
	if !user.Active {
		_ = m.refresh.Delete(refreshToken)
		return nil, authapi.TokenPair{}, errors.ErrUserInactive
	}

	_, next, err := m.refresh.Rotate(refreshToken)
	if err != nil {
		return nil, authapi.TokenPair{}, err
	}
	access, err := m.CreateAccessToken(user)
	if err != nil {
		return nil, authapi.TokenPair{}, err
	}
	return user, authapi.TokenPair{Access: access, Refresh: next}, nil
}

// Verify checks signature, expiry and revocation of an access token.
func (m *Manager) Verify(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.Parse(raw, m.signer.GetVerificationKey)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	if typ, _ := claims["token_type"].(string); typ != tokenTypeAccess {
		return nil, errors.ErrInvalidToken
	}

	out := &Claims{}
	out.UserID, _ = claims["sub"].(string)
	out.Email, _ = claims["email"].(string)
	out.JTI, _ = claims["jti"].(string)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if out.JTI != "" && m.denylist.IsRevoked(out.JTI) {
		return nil, errors.ErrInvalidToken
	}
	return out, nil
}

// UserFor loads the user an access token was issued to.
func (m *Manager) UserFor(claims *Claims) (*users.User, error) {
	user, err := m.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	if !user.Active {
		return nil, errors.ErrUserInactive
	}
	return user, nil
}

// Logout revokes refreshToken and, when present, the access token's jti.
// Unknown refresh tokens are not an error; logout is idempotent.
func (m *Manager) Logout(refreshToken string, access *Claims) {
	if refreshToken != "" {
		_ = m.refresh.Delete(refreshToken)
	}
	if access != nil && access.JTI != "" {
		m.denylist.Add(access.JTI, access.ExpiresAt)
	}
	m.denylist.Prune(m.nowFunc())
}
