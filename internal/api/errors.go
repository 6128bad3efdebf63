package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrLoginRejected is returned when the auth service answers a login or
// registration with success=false.
var ErrLoginRejected = errors.New("login rejected")

// AuthError is a login or registration the auth service answered with
// success=false. It matches ErrLoginRejected with errors.Is.
type AuthError struct {
	Op      string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrLoginRejected, e.Message)
}

func (e *AuthError) Unwrap() error { return ErrLoginRejected }

// Error represents a non-2xx response from the analysis API.
type Error struct {
	StatusCode int
	// Message is the server-provided error text, taken from the "error" or
	// "message" field of a JSON body. It is empty when the body carried none.
	Message string
	Op      string // Operation that failed (e.g., "Analyze")
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

// IsNotFound reports whether err indicates a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized reports whether err indicates a 401 or 403 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// ServerMessage returns the error text the server sent with a non-2xx
// response or a rejected login, or "" when err carries none.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return ""
}
