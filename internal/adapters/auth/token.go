package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "everhack"

type jwtClaims struct {
	jwt.RegisteredClaims
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	UserSince int64    `json:"user_since,omitempty"`
}

type jwtAuthority struct {
	secret []byte
}

// JWTAuthority signs and verifies HS256 session tokens. The session id is
// carried in the "jti" claim so that sign-out can revoke it.
type JWTAuthority interface {
	domain.TokenIssuer
	domain.TokenVerifier
}

// NewJWTAuthority returns a JWTAuthority using the given secret.
func NewJWTAuthority(secret string) JWTAuthority {
	return &jwtAuthority{secret: []byte(secret)}
}

func (a *jwtAuthority) Issue(sessionID string, identity domain.Identity, roles []string, expiry time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiry)
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: identity.Email,
		Roles: roles,
	}
	if !identity.CreatedAt.IsZero() {
		claims.UserSince = identity.CreatedAt.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

func (a *jwtAuthority) Verify(token string) (*domain.AuthSession, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: malformed claims", domain.ErrUnauthorized)
	}
	session := &domain.AuthSession{
		ID: claims.ID,
		Identity: domain.Identity{
			ID:    claims.Subject,
			Email: claims.Email,
		},
		Claims: domain.Claims{Roles: append([]string(nil), claims.Roles...)},
	}
	if claims.UserSince > 0 {
		session.Identity.CreatedAt = time.Unix(claims.UserSince, 0).UTC()
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
