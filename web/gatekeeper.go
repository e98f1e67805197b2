// Package web adapts the session kit to go-router handlers: a gatekeeper
// middleware that applies route-guard decisions, and a controller serving the
// authentication pages. Rendering is by view name; templates belong to the
// embedding application.
package web

import (
	"net/http"
	"time"

	"github.com/goliatone/go-router"
	"github.com/quizforge/go-session"
)

const (
	// DefaultCaptureCookie remembers the rejected location so a post-login
	// redirect can return there.
	DefaultCaptureCookie = "rejected_route"
	// DefaultPendingView renders while no verification has settled.
	DefaultPendingView = "loading"
)

// Gatekeeper guards routes with session.Evaluate decisions.
type Gatekeeper struct {
	manager          *session.Manager
	logger           session.Logger
	loginPath        string
	unauthorizedPath string
	captureCookie    string
	pendingView      string
}

// GatekeeperOption customizes a Gatekeeper.
type GatekeeperOption func(*Gatekeeper)

// WithGatekeeperLogger overrides the default logger.
func WithGatekeeperLogger(logger session.Logger) GatekeeperOption {
	return func(g *Gatekeeper) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithLoginPath overrides the login destination.
func WithLoginPath(path string) GatekeeperOption {
	return func(g *Gatekeeper) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithUnauthorizedPath overrides the unauthorized destination.
func WithUnauthorizedPath(path string) GatekeeperOption {
	return func(g *Gatekeeper) {
		if path != "" {
			g.unauthorizedPath = path
		}
	}
}

// WithCaptureCookie overrides the cookie name used to remember rejected
// locations.
func WithCaptureCookie(name string) GatekeeperOption {
	return func(g *Gatekeeper) {
		if name != "" {
			g.captureCookie = name
		}
	}
}

// WithPendingView overrides the view rendered for pending sessions.
func WithPendingView(view string) GatekeeperOption {
	return func(g *Gatekeeper) {
		if view != "" {
			g.pendingView = view
		}
	}
}

// NewGatekeeper builds the middleware factory around a session Manager.
func NewGatekeeper(manager *session.Manager, opts ...GatekeeperOption) *Gatekeeper {
	g := &Gatekeeper{
		manager:          manager,
		logger:           session.DefaultLogger(),
		loginPath:        session.DefaultLoginPath,
		unauthorizedPath: session.DefaultUnauthorizedPath,
		captureCookie:    DefaultCaptureCookie,
		pendingView:      DefaultPendingView,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Protected gates a route on authentication alone.
func (g *Gatekeeper) Protected() router.MiddlewareFunc {
	return g.ProtectedWithRole("")
}

// ProtectedWithRole additionally requires the named role ("admin",
// "moderator", or an exact role).
func (g *Gatekeeper) ProtectedWithRole(requiredRole string) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			opts := []session.GuardOption{
				session.WithLoginPath(g.loginPath),
				session.WithUnauthorizedPath(g.unauthorizedPath),
			}
			if requiredRole != "" {
				opts = append(opts, session.WithRequiredRole(requiredRole))
			}

			decision := session.Evaluate(g.manager.Snapshot(), opts...)

			switch decision.Action {
			case session.GuardPending:
				return c.Render(g.pendingView, router.ViewContext{})
			case session.GuardAllow:
				return next(c)
			default:
				if decision.CaptureOrigin {
					g.SetRedirect(c)
				}
				g.logger.Info("navigation to %s rejected, redirecting to %s", c.OriginalURL(), decision.Target)
				return c.Redirect(decision.Target, redirectStatus(c))
			}
		}
	}
}

// SetRedirect remembers the currently requested location in a short-lived
// cookie so the login flow can return there.
func (g *Gatekeeper) SetRedirect(c router.Context) {
	c.Cookie(&router.Cookie{
		Name:     g.captureCookie,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect pops the captured location, falling back to def.
func (g *Gatekeeper) GetRedirect(c router.Context, def string) string {
	r := c.Cookies(g.captureCookie)
	if r == "" {
		return def
	}
	g.cookieDel(c, g.captureCookie)
	return r
}

func (g *Gatekeeper) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
