package web

import (
	"context"
	"sync"

	session "github.com/quizforge/go-session"
)

// stubBackend is a canned-response backend for handler tests.
type stubBackend struct {
	user      *session.User
	creds     *session.Credentials
	loginErr  error
	verifyErr error
}

func (s *stubBackend) Register(ctx context.Context, payload session.RegisterPayload) (*session.User, error) {
	return s.user, nil
}

func (s *stubBackend) Login(ctx context.Context, email, password string) (*session.Credentials, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.creds, nil
}

func (s *stubBackend) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	return s.user, nil
}

func (s *stubBackend) Logout(ctx context.Context, token string) error {
	return nil
}

func (s *stubBackend) RequestPasswordReset(ctx context.Context, email string) error {
	return nil
}

func (s *stubBackend) ResetPassword(ctx context.Context, payload session.ResetPasswordPayload) error {
	return nil
}

func (s *stubBackend) VerifyEmail(ctx context.Context, token string) error {
	return s.verifyErr
}

func (s *stubBackend) ChangePassword(ctx context.Context, token string, payload session.ChangePasswordPayload) error {
	return nil
}

func (s *stubBackend) UpdateProfile(ctx context.Context, token string, payload session.ProfilePayload) (*session.User, error) {
	return s.user, nil
}

type memStore struct {
	mu    sync.Mutex
	token string
}

func (s *memStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func readyManager(t interface{ Fatalf(string, ...any) }, backend session.Backend, loggedIn bool) *session.Manager {
	manager := session.NewManager(backend, &memStore{})
	if err := manager.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if loggedIn {
		if _, err := manager.Login(context.Background(), "ada@example.com", "hunter22"); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	return manager
}
