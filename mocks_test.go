package session_test

import (
	"context"
	"fmt"
	"sync"

	session "github.com/quizforge/go-session"
	"github.com/stretchr/testify/mock"
)

// MockBackend mocks the remote REST API.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Register(ctx context.Context, payload session.RegisterPayload) (*session.User, error) {
	args := m.Called(ctx, payload)
	user, _ := args.Get(0).(*session.User)
	return user, args.Error(1)
}

func (m *MockBackend) Login(ctx context.Context, email, password string) (*session.Credentials, error) {
	args := m.Called(ctx, email, password)
	creds, _ := args.Get(0).(*session.Credentials)
	return creds, args.Error(1)
}

func (m *MockBackend) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*session.User)
	return user, args.Error(1)
}

func (m *MockBackend) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockBackend) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockBackend) ResetPassword(ctx context.Context, payload session.ResetPasswordPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockBackend) VerifyEmail(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockBackend) ChangePassword(ctx context.Context, token string, payload session.ChangePasswordPayload) error {
	args := m.Called(ctx, token, payload)
	return args.Error(0)
}

func (m *MockBackend) UpdateProfile(ctx context.Context, token string, payload session.ProfilePayload) (*session.User, error) {
	args := m.Called(ctx, token, payload)
	user, _ := args.Get(0).(*session.User)
	return user, args.Error(1)
}

// stubStore is an in-memory credential store with injectable failures.
type stubStore struct {
	mu       sync.Mutex
	token    string
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (s *stubStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return "", s.loadErr
	}
	return s.token, nil
}

func (s *stubStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token = token
	return nil
}

func (s *stubStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.token = ""
	return nil
}

func (s *stubStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *stubStore) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

func (s *stubStore) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// backendFailure mimics an API client error carrying a response status and
// the backend's structured detail message.
type backendFailure struct {
	status int
	detail string
}

func (e *backendFailure) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.status, e.detail)
}

func (e *backendFailure) StatusCode() int { return e.status }
func (e *backendFailure) Detail() string  { return e.detail }
