package domain

import "strings"

// Role is the caller's derived access level.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleMember    Role = "member"
	RoleAdmin     Role = "admin"
)

// Role codes stored in the roles table and issued in the token's roles claim.
const (
	RoleCodeAdmin  = "admin"
	RoleCodeMember = "member"
)

// AdminPredicate decides from provider-issued data whether an identity is an administrator.
type AdminPredicate func(id Identity, claims Claims) bool

// NewAdminPredicate returns a predicate that accepts the "admin" roles claim
// or an email on the allow-list (case-insensitive).
func NewAdminPredicate(allowList []string) AdminPredicate {
	allowed := make(map[string]struct{}, len(allowList))
	for _, e := range allowList {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}
	return func(id Identity, claims Claims) bool {
		for _, r := range claims.Roles {
			if r == RoleCodeAdmin {
				return true
			}
		}
		_, ok := allowed[strings.ToLower(id.Email)]
		return ok
	}
}

// DeriveRole computes the role from the identity and its claims. It holds no
// state; callers recompute it whenever the session changes.
func DeriveRole(id *Identity, claims Claims, isAdmin AdminPredicate) Role {
	if id == nil || id.ID == "" {
		return RoleAnonymous
	}
	if isAdmin != nil && isAdmin(*id, claims) {
		return RoleAdmin
	}
	return RoleMember
}

// Actor is the authenticated caller a service operation runs on behalf of.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.UserID != "" && a.Role == RoleAdmin }
