package session

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNotAuthenticated = "session_not_authenticated"
	TextCodeTokenRejected    = "session_token_rejected"
	TextCodeBackendRejected  = "session_backend_rejected"
	TextCodeNetworkFailure   = "session_network_failure"
)

// ErrNotAuthenticated is returned by operations that require a live session.
var ErrNotAuthenticated = goerrors.New("not authenticated", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenRejected is returned when a previously trusted token fails
// verification with a 401.
var ErrTokenRejected = goerrors.New("session token rejected", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRejected).
	WithCode(goerrors.CodeUnauthorized)

// Fallback messages shown when the backend returns no structured detail.
// Wording matches what the product has always surfaced.
const (
	FallbackRegister             = "Registration failed"
	FallbackLogin                = "Login failed"
	FallbackLogout               = "Logout failed"
	FallbackRequestPasswordReset = "Password reset request failed"
	FallbackResetPassword        = "Password reset failed"
	FallbackVerifyEmail          = "Email verification failed"
	FallbackChangePassword       = "Password change failed"
	FallbackUpdateProfile        = "Profile update failed"
	FallbackBootstrap            = "An error occurred"
)

// BackendError is implemented by API client errors that carry a response
// status and the backend's structured detail message.
type BackendError interface {
	error
	StatusCode() int
	Detail() string
}

// ErrorDetail extracts the backend's detail message from err, falling back to
// the operation-specific message when the response had no structured payload.
func ErrorDetail(err error, fallback string) string {
	var be BackendError
	if goerrors.As(err, &be) {
		if d := be.Detail(); d != "" {
			return d
		}
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err represents a 401 from the backend.
func IsUnauthorized(err error) bool {
	var be BackendError
	if goerrors.As(err, &be) {
		return be.StatusCode() == 401
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}

// IsNetworkFailure reports whether err never produced a response at all.
func IsNetworkFailure(err error) bool {
	var be BackendError
	if goerrors.As(err, &be) {
		return be.StatusCode() == 0
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeNetworkFailure
	}
	return false
}
