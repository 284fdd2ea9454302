// Package gate decides, for every navigation attempt, whether the current
// session may render the requested view or must be redirected. It is a pure
// policy function: it reads the session and the view's declared role set,
// and never mutates either.
package gate

import (
	"strings"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/session"
)

// Outcome is the kind of routing decision the gate produces.
type Outcome string

const (
	// Render lets the requested view mount.
	Render Outcome = "render"
	// RedirectToLogin sends the visitor to the login view, carrying the
	// originally requested path so login can return there afterward.
	RedirectToLogin Outcome = "redirect_to_login"
	// RedirectToRoleHome sends an authenticated but misrouted session to its
	// role's canonical landing route.
	RedirectToRoleHome Outcome = "redirect_to_role_home"
)

// View is a protected view's declaration: its path and the roles allowed to
// render it. An empty AllowedRoles means any authenticated role. Views
// themselves perform no authorization checks; the gate is the sole
// enforcement point.
type View struct {
	Path         string
	AllowedRoles []domain.Role
}

// Allows reports whether the view admits the given role.
func (v View) Allows(r domain.Role) bool {
	if len(v.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range v.AllowedRoles {
		if allowed == r {
			return true
		}
	}
	return false
}

// Decision is the gate's verdict for one navigation attempt.
type Decision struct {
	Outcome Outcome
	// Target is the redirect destination; empty when Outcome is Render.
	Target string
	// Next carries the originally requested path on RedirectToLogin.
	Next string
}

// Decide evaluates the view's role set against the session.
func Decide(sess session.Session, view View) Decision {
	if !sess.Authenticated {
		return Decision{
			Outcome: RedirectToLogin,
			Target:  LoginPath,
			Next:    view.Path,
		}
	}

	if view.Allows(sess.Role) {
		return Decision{Outcome: Render}
	}

	home := RoleHome(sess.Role)

	// Redirect-loop guard: when the misrouted path is already the role home
	// (or nested under it), redirecting there again would cycle while the
	// home route is still rendering.
	if view.Path == home || strings.HasPrefix(view.Path, home+"/") {
		return Decision{Outcome: Render}
	}

	return Decision{
		Outcome: RedirectToRoleHome,
		Target:  home,
	}
}
