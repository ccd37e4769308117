package domain

import (
	"context"
	"strings"
	"time"
)

// User is an account held by the auth provider.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, passwordHash, salt string, createdAt time.Time) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// Identity returns the read-only projection of u that sessions carry.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Identity is the authenticated subject as issued by the auth provider.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Claims are the externally issued assertions attached to a session.
type Claims struct {
	Roles []string `json:"roles"`
}

// AuthSession is a resolved provider session.
type AuthSession struct {
	ID        string
	Identity  Identity
	Claims    Claims
	ExpiresAt time.Time
}

// Profile holds the member-facing details of an identity.
// swagger:model Profile
type Profile struct {
	UserID   string  `json:"user_id"`
	FullName *string `json:"full_name"`
	Email    string  `json:"email"`
}

// Initials returns up to two upper-case initials from the full name, falling
// back to the first two characters of the email.
func (p *Profile) Initials() string {
	if p.FullName != nil {
		var initials []rune
		for _, part := range strings.Fields(*p.FullName) {
			initials = append(initials, []rune(part)[0])
			if len(initials) == 2 {
				break
			}
		}
		if len(initials) > 0 {
			return strings.ToUpper(string(initials))
		}
	}
	email := []rune(p.Email)
	if len(email) == 0 {
		return "U"
	}
	if len(email) > 2 {
		email = email[:2]
	}
	return strings.ToUpper(string(email))
}

// RoleRecord is a row of the roles table (e.g. admin, member).
type RoleRecord struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated identity.
type TokenIssuer interface {
	Issue(sessionID string, identity Identity, roles []string, expiry time.Duration) (token string, expiresAt time.Time, err error)
}

// TokenVerifier verifies a token and returns the session it encodes.
type TokenVerifier interface {
	Verify(token string) (*AuthSession, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	AssignRole(ctx context.Context, userID, roleID string) error
}

// ProfileRepository stores profiles, one per user.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
}

// RoleRepository defines the interface for role storage
type RoleRepository interface {
	GetByCode(ctx context.Context, code string) (*RoleRecord, error)
	ListByUserID(ctx context.Context, userID string) ([]*RoleRecord, error)
}

// RevokedSessionRepository records signed-out sessions until their tokens expire.
type RevokedSessionRepository interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// AuthService is the auth provider boundary: account creation, token
// issuance, session resolution and sign-out.
type AuthService interface {
	SignUp(ctx context.Context, email, password string, fullName *string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, session *AuthSession, err error)
	Refresh(ctx context.Context, current *AuthSession) (token string, session *AuthSession, err error)
	Resolve(ctx context.Context, token string) (*AuthSession, error)
	SignOut(ctx context.Context, session *AuthSession) error
}
