// Package client implements the REST API client for the quiz-generation
// backend. Every request carries the bearer token when one is supplied and
// echoes the anti-forgery cookie as a header when the backend has set one.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/quizforge/go-session"
)

const (
	// CSRFCookieName is the same-site cookie the backend sets.
	CSRFCookieName = "csrf_token"
	// CSRFHeaderName is the header the cookie value is echoed in.
	CSRFHeaderName = "X-CSRF-Token"
)

const defaultTimeout = 10 * time.Second

// Config holds client configuration.
type Config struct {
	// BaseURL is the versioned API root, e.g. "http://localhost:8000/api/v1".
	BaseURL string

	// HTTPClient overrides the default client. The default keeps a cookie
	// jar so the backend's csrf_token cookie is captured and echoed.
	HTTPClient *http.Client

	Logger session.Logger
}

// Client talks to the remote backend. It is stateless apart from the cookie
// jar; the bearer token is supplied per call by the session Manager.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     session.Logger
}

var _ session.Backend = (*Client)(nil)

// New creates a backend client for the given API root.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, goerrors.Wrap(ErrInvalidBaseURL, goerrors.CategoryBadInput, "base URL is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, goerrors.Wrap(ErrInvalidBaseURL, goerrors.CategoryBadInput, err.Error())
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Register implements session.Backend.
func (c *Client) Register(ctx context.Context, payload session.RegisterPayload) (*session.User, error) {
	user := &session.User{}
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", "", payload, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login implements session.Backend.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Credentials, error) {
	body := session.LoginPayload{Email: email, Password: password}
	creds := &session.Credentials{}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login/json", "", body, creds); err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, &APIError{Operation: "login", Message: "missing access token in response"}
	}
	return creds, nil
}

// CurrentUser implements session.Backend.
func (c *Client) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	user := &session.User{}
	if err := c.do(ctx, "current_user", http.MethodGet, "/users/me", token, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout implements session.Backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", token, nil, nil)
}

// RequestPasswordReset implements session.Backend.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, "request_password_reset", http.MethodPost, "/auth/request-password-reset", "", body, nil)
}

// ResetPassword implements session.Backend.
func (c *Client) ResetPassword(ctx context.Context, payload session.ResetPasswordPayload) error {
	return c.do(ctx, "reset_password", http.MethodPost, "/auth/reset-password", "", payload, nil)
}

// VerifyEmail implements session.Backend.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	body := map[string]string{"token": token}
	return c.do(ctx, "verify_email", http.MethodPost, "/auth/verify-email", "", body, nil)
}

// ChangePassword implements session.Backend.
func (c *Client) ChangePassword(ctx context.Context, token string, payload session.ChangePasswordPayload) error {
	return c.do(ctx, "change_password", http.MethodPost, "/users/me/change-password", token, payload, nil)
}

// UpdateProfile implements session.Backend.
func (c *Client) UpdateProfile(ctx context.Context, token string, payload session.ProfilePayload) (*session.User, error) {
	user := &session.User{}
	if err := c.do(ctx, "update_profile", http.MethodPut, "/users/me", token, payload, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &APIError{Operation: operation, Message: "failed to encode request body", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return &APIError{Operation: operation, Message: "failed to build request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf := c.csrfToken(endpoint); csrf != "" {
		req.Header.Set(CSRFHeaderName, csrf)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Status stays zero: no response at all
		c.logger.Warn("%s: network failure: %s", operation, err)
		return &APIError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Operation: operation, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, raw := parseErrorDetail(data)
		c.logger.Debug("%s: backend rejected with %d: %s", operation, resp.StatusCode, detail)
		return &APIError{
			Operation: operation,
			Status:    resp.StatusCode,
			Message:   detail,
			Raw:       raw,
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &APIError{Operation: operation, Status: resp.StatusCode, Message: "failed to decode response", Err: err}
		}
	}

	return nil
}

// csrfToken reads the anti-forgery cookie the backend set for our origin.
func (c *Client) csrfToken(endpoint *url.URL) string {
	if c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(endpoint) {
		if cookie.Name == CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
