// Package credstore persists the bearer token across client restarts. One
// sqlite file plays the role of a browser profile: tokens are scoped to a
// named profile and never shared across files.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/quizforge/go-session"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// DefaultProfile names the profile used when none is configured.
const DefaultProfile = "default"

// ErrStoreClosed is returned on use after Close.
var ErrStoreClosed = goerrors.New("credential store is closed", goerrors.CategoryOperation).
	WithTextCode("credstore_closed")

type credentialModel struct {
	bun.BaseModel `bun:"table:credentials"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Profile   string    `bun:"profile,notnull,unique"`
	Token     []byte    `bun:"token,notnull"`
	Sealed    bool      `bun:"sealed,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// Store is a bun/sqlite-backed credential store.
type Store struct {
	db      *bun.DB
	profile string
	cipher  *cipher

	mu     sync.Mutex
	closed bool
}

var _ session.CredentialStore = (*Store)(nil)

// Option customizes store construction.
type Option func(*Store)

// WithProfile scopes the store to a named profile within the same file.
func WithProfile(profile string) Option {
	return func(s *Store) {
		if profile != "" {
			s.profile = profile
		}
	}
}

// WithSecret seals tokens at rest with a key derived from secret. Loading
// with a different secret fails; an empty secret stores tokens as-is.
func WithSecret(secret string) Option {
	return func(s *Store) {
		if secret != "" {
			s.cipher = newCipher(secret)
		}
	}
}

// Open opens (creating if needed) the credential database at path. Use
// ":memory:" for an ephemeral store in tests.
func Open(path string, opts ...Option) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to open credential database")
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	store := &Store{
		db:      db,
		profile: DefaultProfile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().
		Model((*credentialModel)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		_ = db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to initialize credential table")
	}

	return store, nil
}

// Load implements session.CredentialStore. An absent token is ("", nil).
func (s *Store) Load(ctx context.Context) (string, error) {
	if s.isClosed() {
		return "", ErrStoreClosed
	}

	model := &credentialModel{}
	err := s.db.NewSelect().
		Model(model).
		Where("profile = ?", s.profile).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load credential")
	}

	if !model.Sealed {
		return string(model.Token), nil
	}

	if s.cipher == nil {
		return "", goerrors.New("credential is sealed but no secret configured", goerrors.CategoryOperation).
			WithTextCode("credstore_sealed")
	}

	token, err := s.cipher.open(model.Token)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Save implements session.CredentialStore, upserting the profile's token.
func (s *Store) Save(ctx context.Context, token string) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	stored := []byte(token)
	sealed := false
	if s.cipher != nil {
		var err error
		if stored, err = s.cipher.seal(token); err != nil {
			return err
		}
		sealed = true
	}

	now := time.Now()
	model := &credentialModel{
		ID:        uuid.New(),
		Profile:   s.profile,
		Token:     stored,
		Sealed:    sealed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (profile) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("sealed = EXCLUDED.sealed").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to save credential")
	}
	return nil
}

// Clear implements session.CredentialStore. Clearing an absent token is not
// an error.
func (s *Store) Clear(ctx context.Context) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	_, err := s.db.NewDelete().
		Model((*credentialModel)(nil)).
		Where("profile = ?", s.profile).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to clear credential")
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
