package session

import (
	"fmt"

	"github.com/jrsteele09/resume-matcher-client/internal/errors"
)

var (
	// ErrMissingCredential means the operation needs a stored token and there is none.
	// No network call has been made. Usually resolved by sending the user to login.
	ErrMissingCredential = errors.ErrMissingCredential
	// ErrRefreshFailed matches every *RefreshError via errors.Is.
	ErrRefreshFailed = errors.ErrRefreshFailed
	// ErrVerificationFailed is returned when the verify endpoint rejects the session.
	ErrVerificationFailed = errors.ErrVerificationFailed
)

// AuthenticationError is a rejected login. Message is the server's
// explanation, suitable for showing next to the login form.
type AuthenticationError struct {
	Status  int
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, errors.ErrInvalidCredentials) hold.
func (e *AuthenticationError) Is(target error) bool {
	return target == errors.ErrInvalidCredentials
}

// RefreshError is a failed token refresh. The session has already been
// logged out when it is returned. Status is 0 when the server was never reached.
type RefreshError struct {
	Status int
	Err    error
}

func (e *RefreshError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d", ErrRefreshFailed, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrRefreshFailed, e.Err)
	}
	return ErrRefreshFailed.Error()
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

func (e *RefreshError) Is(target error) bool {
	return target == ErrRefreshFailed
}

// NetworkError is a transport failure talking to the backend. It never
// logs the session out by itself.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("[%s] network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
