package session

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Manager owns the client's single session and is the only writer to it and
// to the credential store. Operations run one network exchange at a time and
// always settle the status before returning; overlapping calls are tolerated
// last-write-wins with no cross-request ordering guarantee.
type Manager struct {
	backend Backend
	store   CredentialStore
	logger  Logger
	now     func() time.Time

	mu      sync.Mutex
	session SessionObject
}

// ManagerOption customizes Manager construction.
type ManagerOption func(*Manager)

// WithLogger overrides the default printf logger.
func WithLogger(logger Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// NewManager returns a Manager in the idle state; call Bootstrap to restore
// a persisted session.
func NewManager(backend Backend, store CredentialStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		backend: backend,
		store:   store,
		logger:  defLogger{},
		now:     time.Now,
		session: SessionObject{Status: StatusIdle},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() SessionObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.clone()
}

// CurrentUser returns the verified user, or nil when unauthenticated.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.User.Clone()
}

// Token returns the bearer token, empty when absent.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}

// Status returns where the session is in its lifecycle.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Status
}

// LastError returns the most recent operation's surfaced message, if any.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.LastError
}

// IsAdmin checks the current user, see User.IsAdmin.
func (m *Manager) IsAdmin() bool { return m.CurrentUser().IsAdmin() }

// IsModerator checks the current user, see User.IsModerator.
func (m *Manager) IsModerator() bool { return m.CurrentUser().IsModerator() }

// HasRole checks the current user for an exact role match.
func (m *Manager) HasRole(role string) bool { return m.CurrentUser().HasRole(role) }

// Bootstrap restores the session at application start: it loads the persisted
// token and verifies it against the backend. A missing token settles the
// session unauthenticated without any network call. A 401 clears the stored
// token silently; any other verification failure keeps the token, records the
// error, and leaves the session in StatusError for a later retry.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.begin()
	defer m.settle()

	token, err := m.store.Load(ctx)
	if err != nil {
		// treat an unreadable store like an absent token
		m.logger.Warn("bootstrap: credential store load: %s", err)
		token = ""
	}

	if token == "" {
		m.update(func(s *SessionObject) {
			s.Token = ""
			s.User = nil
			s.Status = StatusReady
			s.LastError = ""
		})
		return nil
	}

	m.update(func(s *SessionObject) { s.Token = token })

	user, err := m.backend.CurrentUser(ctx, token)
	if err != nil {
		if IsUnauthorized(err) {
			// stale token: invalidate locally, not a user-visible error
			if cerr := m.store.Clear(ctx); cerr != nil {
				m.logger.Warn("bootstrap: credential store clear: %s", cerr)
			}
			m.update(func(s *SessionObject) {
				s.Token = ""
				s.User = nil
				s.Status = StatusReady
				s.LastError = ""
			})
			return nil
		}

		detail := ErrorDetail(err, FallbackBootstrap)
		m.update(func(s *SessionObject) {
			s.User = nil
			s.Status = StatusError
			s.LastError = detail
		})
		m.logger.Error("bootstrap verification error: %s", detail)
		return m.operationError("bootstrap", err, FallbackBootstrap)
	}

	verifiedAt := m.now()
	m.update(func(s *SessionObject) {
		s.User = user
		s.Status = StatusReady
		s.LastError = ""
		s.LastVerifiedAt = &verifiedAt
	})
	return nil
}

// Register creates a new account. It does not log the new user in; the
// backend sends a verification email first.
func (m *Manager) Register(ctx context.Context, payload RegisterPayload) (created *User, err error) {
	m.begin()
	defer m.finish(&err, FallbackRegister)

	created, err = m.backend.Register(ctx, payload)
	if err != nil {
		return nil, m.operationError("register", err, FallbackRegister)
	}
	return created, nil
}

// Login exchanges credentials for a bearer token, persists it, and fetches
// the user record. On failure token and user are left exactly as before.
func (m *Manager) Login(ctx context.Context, email, password string) (user *User, err error) {
	m.begin()
	defer m.finish(&err, FallbackLogin)

	creds, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, m.operationError("login", err, FallbackLogin)
	}

	if serr := m.store.Save(ctx, creds.AccessToken); serr != nil {
		m.logger.Warn("login: credential store save: %s", serr)
	}
	m.update(func(s *SessionObject) { s.Token = creds.AccessToken })

	user, err = m.backend.CurrentUser(ctx, creds.AccessToken)
	if err != nil {
		// token issued but verification failed; user stays absent
		return nil, m.operationError("login", err, FallbackLogin)
	}

	verifiedAt := m.now()
	m.update(func(s *SessionObject) {
		s.User = user
		s.LastVerifiedAt = &verifiedAt
	})
	return user, nil
}

// Logout clears the session. The remote call is best-effort: local state and
// the stored token are cleared even when the backend rejects the request,
// honoring the user's intent to leave.
func (m *Manager) Logout(ctx context.Context) error {
	m.begin()
	defer m.settle()

	token := m.Token()
	var remoteErr error
	if token != "" {
		remoteErr = m.backend.Logout(ctx, token)
	}

	if cerr := m.store.Clear(ctx); cerr != nil {
		m.logger.Warn("logout: credential store clear: %s", cerr)
	}

	lastError := ""
	if remoteErr != nil {
		lastError = ErrorDetail(remoteErr, FallbackLogout)
		m.logger.Warn("logout: remote call failed, clearing locally anyway: %s", lastError)
	}

	m.update(func(s *SessionObject) {
		s.Token = ""
		s.User = nil
		s.Status = StatusReady
		s.LastError = lastError
	})
	return nil
}

// RequestPasswordReset triggers the backend's reset email dispatch. The
// backend reports success whether or not the address exists, so callers
// cannot probe for accounts.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (err error) {
	m.begin()
	defer m.finish(&err, FallbackRequestPasswordReset)

	if err = m.backend.RequestPasswordReset(ctx, email); err != nil {
		return m.operationError("request_password_reset", err, FallbackRequestPasswordReset)
	}
	return nil
}

// ResetPassword completes a reset started from an emailed link; the token
// comes from that link, not from the session.
func (m *Manager) ResetPassword(ctx context.Context, payload ResetPasswordPayload) (err error) {
	m.begin()
	defer m.finish(&err, FallbackResetPassword)

	if err = m.backend.ResetPassword(ctx, payload); err != nil {
		return m.operationError("reset_password", err, FallbackResetPassword)
	}
	return nil
}

// VerifyEmail marks the account verified using the token from the
// verification link.
func (m *Manager) VerifyEmail(ctx context.Context, token string) (err error) {
	m.begin()
	defer m.finish(&err, FallbackVerifyEmail)

	if err = m.backend.VerifyEmail(ctx, token); err != nil {
		return m.operationError("verify_email", err, FallbackVerifyEmail)
	}
	return nil
}

// ChangePassword rotates the authenticated user's credential.
func (m *Manager) ChangePassword(ctx context.Context, payload ChangePasswordPayload) (err error) {
	m.begin()
	defer m.finish(&err, FallbackChangePassword)

	token := m.Token()
	if token == "" {
		err = ErrNotAuthenticated
		return err
	}

	if err = m.backend.ChangePassword(ctx, token, payload); err != nil {
		return m.operationError("change_password", err, FallbackChangePassword)
	}
	return nil
}

// UpdateProfile sends a partial user record and adopts the canonical record
// the backend returns.
func (m *Manager) UpdateProfile(ctx context.Context, payload ProfilePayload) (user *User, err error) {
	m.begin()
	defer m.finish(&err, FallbackUpdateProfile)

	token := m.Token()
	if token == "" {
		err = ErrNotAuthenticated
		return nil, err
	}

	user, err = m.backend.UpdateProfile(ctx, token, payload)
	if err != nil {
		return nil, m.operationError("update_profile", err, FallbackUpdateProfile)
	}

	m.update(func(s *SessionObject) { s.User = user })
	return user, nil
}

func (m *Manager) begin() {
	m.update(func(s *SessionObject) { s.Status = StatusLoading })
}

// finish settles the session back to StatusReady no matter how the operation
// ended, recording the surfaced message when it failed. Deferred so a panic
// can never leave the status stuck at StatusLoading.
func (m *Manager) finish(errp *error, fallback string) {
	lastError := ""
	if errp != nil && *errp != nil {
		lastError = ErrorDetail(*errp, fallback)
	}
	m.update(func(s *SessionObject) {
		s.Status = StatusReady
		s.LastError = lastError
	})
}

// settle is the safety net for operations that pick their own terminal
// status: on the normal paths the status is already StatusReady or
// StatusError and this is a no-op, but a panic mid-operation would otherwise
// strand the session at StatusLoading and keep route guards pending forever.
func (m *Manager) settle() {
	m.update(func(s *SessionObject) {
		if s.Status == StatusLoading {
			s.Status = StatusReady
		}
	})
}

func (m *Manager) update(fn func(*SessionObject)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.session)
}

// operationError wraps a backend failure so the caller sees the backend's
// detail verbatim while keeping the original error in the chain.
func (m *Manager) operationError(op string, err error, fallback string) error {
	detail := ErrorDetail(err, fallback)
	m.logger.Error("%s error: %s", op, detail)

	category := goerrors.CategoryValidation
	switch {
	case IsNetworkFailure(err):
		category = goerrors.CategoryOperation
	case IsUnauthorized(err):
		category = goerrors.CategoryAuth
	}

	return goerrors.Wrap(err, category, detail).
		WithMetadata(map[string]any{"operation": op})
}
