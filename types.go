package session

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Status describes where the session is in its verification lifecycle.
type Status string

const (
	// StatusIdle is the state before Bootstrap has run.
	StatusIdle Status = "idle"
	// StatusLoading means a verification or operation is in flight.
	StatusLoading Status = "loading"
	// StatusReady means the session settled, authenticated or not.
	StatusReady Status = "ready"
	// StatusError means a bootstrap verification failed for a reason other
	// than an invalid token; the persisted token is kept for a later retry.
	StatusError Status = "error"
)

// CredentialStore persists the bearer token across client restarts. An absent
// token loads as the empty string with a nil error.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Backend is the Manager's view of the remote REST API. Authenticated calls
// receive the bearer token explicitly; implementations attach it together
// with the anti-forgery header.
type Backend interface {
	Register(ctx context.Context, payload RegisterPayload) (*User, error)
	Login(ctx context.Context, email, password string) (*Credentials, error)
	CurrentUser(ctx context.Context, token string) (*User, error)
	Logout(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, payload ResetPasswordPayload) error
	VerifyEmail(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, token string, payload ChangePasswordPayload) error
	UpdateProfile(ctx context.Context, token string, payload ProfilePayload) (*User, error)
}

// Credentials is the payload returned by the backend's login endpoint.
type Credentials struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// DefaultLogger returns the printf fallback logger used when no Logger is
// provided.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
