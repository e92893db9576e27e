package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when the carrier rejects the login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenNotFound is returned when a successful login carries no session token.
	ErrTokenNotFound = errors.New("session token not found in response")
	// ErrNetwork is returned on transport failures and carrier server errors.
	ErrNetwork = errors.New("carrier unreachable")
	// ErrMalformedResponse is returned when the carrier response cannot be decoded.
	ErrMalformedResponse = errors.New("malformed carrier response")
	// ErrUnauthorized is returned when the carrier rejects the session token.
	ErrUnauthorized = errors.New("session token rejected")
	// ErrNotFound is returned when the requested tour does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDate is returned when a tour date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

// AuthError describes a failed login.
type AuthError struct {
	// Kind is one of ErrInvalidCredentials, ErrTokenNotFound, ErrNetwork, ErrMalformedResponse.
	Kind error
	// StatusCode is the carrier HTTP status, 0 when no response was received.
	StatusCode int
	// Err is the underlying cause, if any.
	Err error
}

func (e *AuthError) Error() string {
	msg := "authenticate: " + e.Kind.Error()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *AuthError) Unwrap() []error {
	return joinCauses(e.Kind, e.Err)
}

// FetchError describes a failed carrier read.
type FetchError struct {
	// Op names the failed operation, e.g. "get manifest".
	Op string
	// Kind is one of ErrUnauthorized, ErrNetwork, ErrMalformedResponse, ErrNotFound.
	Kind       error
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *FetchError) Unwrap() []error {
	return joinCauses(e.Kind, e.Err)
}

func joinCauses(kind, cause error) []error {
	if cause == nil {
		return []error{kind}
	}
	return []error{kind, cause}
}
