package session

import (
	"fmt"
	"time"
)

var _ RoleValidator = SessionObject{}

// SessionObject is a point-in-time view of the client's authentication state.
// Exactly one live session exists per Manager; view layers work off copies
// returned by Manager.Snapshot and never mutate fields directly.
type SessionObject struct {
	Token          string     `json:"-"`
	User           *User      `json:"user,omitempty"`
	Status         Status     `json:"status,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
}

// Authenticated reports whether the session carries a verified user. A token
// may exist transiently without a user (while loading, or after server-side
// invalidation); the converse never holds.
func (s SessionObject) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Pending reports whether no verification has settled yet. Guarded views
// render a neutral indicator for pending sessions instead of redirecting.
func (s SessionObject) Pending() bool {
	return s.Status == StatusIdle || s.Status == StatusLoading
}

// HasRole checks if the session's user has exactly the given role
func (s SessionObject) HasRole(role string) bool {
	return s.User.HasRole(role)
}

// IsAdmin checks if the session's user should see admin-only views
func (s SessionObject) IsAdmin() bool {
	return s.User.IsAdmin()
}

// IsModerator checks if the session's user can moderate
func (s SessionObject) IsModerator() bool {
	return s.User.IsModerator()
}

// IsAtLeast checks if the session's user meets the minimum required role
func (s SessionObject) IsAtLeast(minRole UserRole) bool {
	return s.User.IsAtLeast(minRole)
}

func (s SessionObject) String() string {
	identity := "<anonymous>"
	if s.User != nil {
		identity = s.User.Email
	}
	return fmt.Sprintf(
		"user=%s status=%s token=%t err=%q",
		identity,
		s.Status,
		s.Token != "",
		s.LastError,
	)
}

func (s SessionObject) clone() SessionObject {
	c := s
	c.User = s.User.Clone()
	if s.LastVerifiedAt != nil {
		t := *s.LastVerifiedAt
		c.LastVerifiedAt = &t
	}
	return c
}
