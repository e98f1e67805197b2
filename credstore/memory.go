package credstore

import (
	"context"
	"sync"

	"github.com/quizforge/go-session"
)

// MemoryStore is an in-process credential store. Nothing survives a restart;
// it exists for tests and for embedding apps that opt out of persistence.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

var _ session.CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements session.CredentialStore.
func (s *MemoryStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save implements session.CredentialStore.
func (s *MemoryStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements session.CredentialStore.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
