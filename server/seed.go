package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/resume-matcher-client/users"
	"github.com/rs/zerolog"
)

// SeedUser makes sure an account for email exists. When password is empty
// a random one is generated and returned so it can be shown once; an
// existing account is left untouched and the returned password is "".
func SeedUser(repo users.UserRepo, logger zerolog.Logger, email, password, firstName string, now time.Time) (generatedPassword string, err error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("[SeedUser] email is required")
	}
	if existing, err := repo.GetByEmail(email); err == nil && existing != nil {
		logger.Info().Str("email", existing.Email).Msg("seed user already exists")
		return "", nil
	}

	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[SeedUser] generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	} else if err := users.ValidatePasswordStrength(password); err != nil {
		logger.Warn().Err(err).Msg("seed user password is weak; fine for development only")
	}

	user, err := users.New(email, password, firstName, "", now)
	if err != nil {
		return "", fmt.Errorf("[SeedUser] %w", err)
	}
	if err := repo.Upsert(user); err != nil {
		return "", fmt.Errorf("[SeedUser] store user: %w", err)
	}

	logger.Info().Str("email", user.Email).Msg("seed user created")
	return generatedPassword, nil
}

// EmailFromBaseURL builds a default address from a username and base URL.
// Example: ("demo", "https://jobs.example.com/path") -> "demo@jobs.example.com"
func EmailFromBaseURL(user, baseURL string) string {
	domain := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	domain = strings.SplitN(domain, "/", 2)[0]
	domain = strings.SplitN(domain, ":", 2)[0]
	if !strings.Contains(domain, ".") {
		domain += ".test"
	}
	return fmt.Sprintf("%s@%s", user, domain)
}
