// Package access decides whether the current session may enter a destination
// of the navigation shell.
package access

import (
	"slices"

	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
)

// Destination paths shared with the navigation shell.
const (
	Login     = "/login"
	Dashboard = "/dashboard"
	Admin     = "/admin"
)

// Outcome is the kind of decision.
type Outcome string

const (
	Allow    Outcome = "allow"
	Redirect Outcome = "redirect"
	// Pending means the session is still resolving and nothing protected may
	// be shown yet.
	Pending Outcome = "pending"
)

// Decision is the result of checking a destination.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Target  string  `json:"target,omitempty"`
}

// Rule protects one destination.
type Rule struct {
	// Roles may enter.
	Roles []domain.Role
	// Denied is where an authenticated caller without a listed role is sent.
	// Anonymous callers always go to Login.
	Denied string
}

// Policy maps destinations to rules. Destinations without a rule are public.
type Policy map[string]Rule

// DefaultPolicy is the member area plus the admin console.
var DefaultPolicy = Policy{
	Dashboard: {Roles: []domain.Role{domain.RoleMember, domain.RoleAdmin}, Denied: Login},
	Admin:     {Roles: []domain.Role{domain.RoleAdmin}, Denied: Dashboard},
}

// Decide checks st against the rule for destination.
func (p Policy) Decide(destination string, st session.State) Decision {
	if st.Loading {
		return Decision{Outcome: Pending}
	}
	rule, ok := p[destination]
	if !ok || slices.Contains(rule.Roles, st.Role) {
		return Decision{Outcome: Allow}
	}
	if st.Role == domain.RoleAnonymous || rule.Denied == "" {
		return Decision{Outcome: Redirect, Target: Login}
	}
	return Decision{Outcome: Redirect, Target: rule.Denied}
}

// Protected reports whether destination has a rule.
func (p Policy) Protected(destination string) bool {
	_, ok := p[destination]
	return ok
}

// Decide applies DefaultPolicy.
func Decide(destination string, st session.State) Decision {
	return DefaultPolicy.Decide(destination, st)
}
