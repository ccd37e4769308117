package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthority_IssueAndVerify(t *testing.T) {
	a := NewJWTAuthority("test-secret")
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	identity := domain.Identity{ID: "user-123", Email: "u@example.com", CreatedAt: since}

	token, expiresAt, err := a.Issue("sess-1", identity, []string{"admin", "member"}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	session, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "user-123", session.Identity.ID)
	assert.Equal(t, "u@example.com", session.Identity.Email)
	assert.True(t, since.Equal(session.Identity.CreatedAt))
	assert.Equal(t, []string{"admin", "member"}, session.Claims.Roles)
	assert.WithinDuration(t, expiresAt, session.ExpiresAt, time.Second)
}

func TestJWTAuthority_Issue_claims(t *testing.T) {
	a := NewJWTAuthority("test-secret")
	token, _, err := a.Issue("sess-2", domain.Identity{ID: "u1", Email: "a@b.co"}, []string{"member"}, time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "sess-2", claims.ID)
	assert.Equal(t, "everhack", claims.Issuer)
	assert.Zero(t, claims.UserSince)
}

func TestJWTAuthority_Verify_rejects(t *testing.T) {
	a := NewJWTAuthority("test-secret")
	identity := domain.Identity{ID: "u1", Email: "a@b.co"}

	expired, _, err := a.Issue("sess", identity, nil, -time.Minute)
	require.NoError(t, err)
	otherKey, _, err := NewJWTAuthority("other-secret").Issue("sess", identity, nil, time.Hour)
	require.NoError(t, err)
	noSession, _, err := a.Issue("", identity, nil, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong signature", otherKey},
		{"missing session id", noSession},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := a.Verify(tt.token)
			require.Error(t, err)
			assert.Nil(t, session)
			assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		})
	}
}
