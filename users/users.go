package users

import (
	"fmt"
	"time"
	"unicode"

	"github.com/jrsteele09/resume-matcher-client/authapi"
	"golang.org/x/crypto/bcrypt"
)

// User is an account known to the auth stub.
type User struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"` // never serialize
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	DateJoined   time.Time `json:"date_joined,omitempty"`
	LastLogin    time.Time `json:"last_login,omitempty"`
	// Inactive accounts cannot log in or refresh.
	Active bool `json:"is_active"`
}

// New builds an active user with a bcrypt hash of password.
func New(email, password, firstName, lastName string, joined time.Time) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[users New] hash password: %w", err)
	}
	return &User{
		Email:        email,
		Username:     email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		DateJoined:   joined,
		Active:       true,
	}, nil
}

// Profile is the user object sent to clients alongside tokens.
func (u *User) Profile() authapi.User {
	p := authapi.User{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"is_active":  u.Active,
	}
	if !u.DateJoined.IsZero() {
		p["date_joined"] = u.DateJoined.UTC().Format(time.RFC3339)
	}
	if !u.LastLogin.IsZero() {
		p["last_login"] = u.LastLogin.UTC().Format(time.RFC3339)
	}
	return p
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPassword compares password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
