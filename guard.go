package session

// Default destinations for rejected navigation.
const (
	DefaultLoginPath        = "/login"
	DefaultUnauthorizedPath = "/unauthorized"
)

// GuardAction is the outcome of evaluating a guarded route.
type GuardAction string

const (
	// GuardPending means no verification has settled; render a neutral
	// indicator and make no redirect decision yet.
	GuardPending GuardAction = "pending"
	// GuardAllow means the guarded content may render.
	GuardAllow GuardAction = "allow"
	// GuardRedirect means navigation must move to Decision.Target.
	GuardRedirect GuardAction = "redirect"
)

// Decision is what a guarded route should do with the current session.
// CaptureOrigin marks login redirects, where the originally requested
// location should be remembered so a post-login redirect can return there.
type Decision struct {
	Action        GuardAction
	Target        string
	CaptureOrigin bool
}

// Allowed is a convenience check for Action == GuardAllow.
func (d Decision) Allowed() bool { return d.Action == GuardAllow }

// GuardOption customizes a single evaluation.
type GuardOption func(*guardConfig)

type guardConfig struct {
	requiredRole     string
	loginPath        string
	unauthorizedPath string
}

// WithRequiredRole additionally requires the named role: "admin" and
// "moderator" use their predicates (admin implies moderator), anything else
// is an exact role match.
func WithRequiredRole(role string) GuardOption {
	return func(c *guardConfig) {
		c.requiredRole = role
	}
}

// WithLoginPath overrides the destination for unauthenticated sessions.
func WithLoginPath(path string) GuardOption {
	return func(c *guardConfig) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// WithUnauthorizedPath overrides the destination for sessions lacking the
// required role.
func WithUnauthorizedPath(path string) GuardOption {
	return func(c *guardConfig) {
		if path != "" {
			c.unauthorizedPath = path
		}
	}
}

// Evaluate decides whether a guarded view may render for the given session
// snapshot. It is a pure function: no redirect is performed here and no
// session state is touched.
//
// Unauthenticated sessions always redirect to the login destination, even on
// role-scoped routes; only an authenticated session that lacks the required
// role is sent to the unauthorized destination.
func Evaluate(snap SessionObject, opts ...GuardOption) Decision {
	cfg := guardConfig{
		loginPath:        DefaultLoginPath,
		unauthorizedPath: DefaultUnauthorizedPath,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if snap.Pending() {
		return Decision{Action: GuardPending}
	}

	if !snap.Authenticated() {
		return Decision{
			Action:        GuardRedirect,
			Target:        cfg.loginPath,
			CaptureOrigin: true,
		}
	}

	if cfg.requiredRole != "" && !snap.User.SatisfiesRole(cfg.requiredRole) {
		return Decision{
			Action: GuardRedirect,
			Target: cfg.unauthorizedPath,
		}
	}

	return Decision{Action: GuardAllow}
}
