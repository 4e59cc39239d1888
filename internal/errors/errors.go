package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the portal
var (
	// Session errors
	ErrUnauthenticated = errors.New("not authenticated")
	ErrRefreshFailed   = errors.New("refresh failed")

	// Token exchange errors
	ErrTokenExchange      = errors.New("token exchange failed")
	ErrMissingAccessToken = errors.New("no access token in response")
	ErrInvalidState       = errors.New("invalid state")

	// Signed link errors
	ErrInvalidSignature = errors.New("invalid token")
	ErrExpired          = errors.New("link expired")
	ErrMalformed        = errors.New("malformed token")

	// Request errors
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUnknownDeliveryType = errors.New("unknown delivery type")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// UpstreamError is returned when a downstream API rejects a request.
// Body holds the raw response body for diagnostics.
type UpstreamError struct {
	Target string
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Target, e.Status)
}

// IsAuthorizationFailure reports whether the downstream rejected the credential
// itself, as opposed to the request.
func (e *UpstreamError) IsAuthorizationFailure() bool {
	return e.Status == http.StatusUnauthorized
}

// CarrierAuthError is returned when the carrier refuses a client-credentials grant.
type CarrierAuthError struct {
	StatusCode int
	Err        error
}

func (e *CarrierAuthError) Error() string {
	return fmt.Sprintf("failed to retrieve carrier token, status: %d", e.StatusCode)
}

func (e *CarrierAuthError) Unwrap() error {
	return e.Err
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need only one errors import.
func New(text string) error {
	return errors.New(text)
}

// RequestError carries a message meant for the caller of a rejected request.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string {
	return e.Msg
}

func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}

// InvalidRequest returns an ErrInvalidRequest whose message is msg alone.
func InvalidRequest(msg string) error {
	return &RequestError{Msg: msg}
}
