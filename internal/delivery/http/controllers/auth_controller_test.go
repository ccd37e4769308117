package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	passwords map[string]string
	sessions  map[string]*domain.AuthSession
	signOuts  int
	issued    int
	refreshTo []string
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{
		passwords: map[string]string{"member@example.com": "correct horse"},
		sessions:  make(map[string]*domain.AuthSession),
	}
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password string, fullName *string) (*domain.User, error) {
	if _, ok := f.passwords[email]; ok {
		return nil, domain.ErrDuplicateEmail
	}
	f.passwords[email] = password
	return &domain.User{ID: "user-new", Email: email, CreatedAt: testNow}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.AuthSession, error) {
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return "", nil, domain.ErrUnauthorized
	}
	sess := memberSession()
	sess.Identity.Email = email
	return f.issue(sess), sess, nil
}

func (f *fakeAuthService) Refresh(ctx context.Context, current *domain.AuthSession) (string, *domain.AuthSession, error) {
	if current == nil {
		return "", nil, domain.ErrUnauthorized
	}
	next := *current
	next.Claims = domain.Claims{Roles: f.refreshTo}
	next.ExpiresAt = current.ExpiresAt.Add(time.Hour)
	return f.issue(&next), &next, nil
}

func (f *fakeAuthService) Resolve(ctx context.Context, token string) (*domain.AuthSession, error) {
	sess, ok := f.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	cp := *sess
	return &cp, nil
}

func (f *fakeAuthService) SignOut(ctx context.Context, sess *domain.AuthSession) error {
	f.signOuts++
	for token, s := range f.sessions {
		if s.ID == sess.ID {
			delete(f.sessions, token)
		}
	}
	return nil
}

func (f *fakeAuthService) issue(sess *domain.AuthSession) string {
	f.issued++
	token := "token-" + string(rune('0'+f.issued))
	cp := *sess
	f.sessions[token] = &cp
	return token
}

func newAuthController(auth *fakeAuthService) (*AuthController, *session.Registry) {
	registry := session.NewRegistry(auth, session.NewHub(), domain.NewAdminPredicate(nil), nil)
	return NewAuthController(discardLogger(), auth, registry), registry
}

func TestAuthController_SignUp(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"created", `{"email":"new@example.com","password":"long enough","full_name":"Ada Lovelace"}`, http.StatusCreated, ""},
		{"duplicate email", `{"email":"member@example.com","password":"long enough"}`, http.StatusConflict, domain.CodeConflict},
		{"invalid email", `{"email":"nope","password":"long enough"}`, http.StatusBadRequest, domain.CodeValidation},
		{"short password", `{"email":"new@example.com","password":"short"}`, http.StatusBadRequest, domain.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newAuthController(newFakeAuthService())
			w := httptest.NewRecorder()
			c.SignUp(w, newRequest(http.MethodPost, "/auth/signup", tt.body, nil))
			require.Equal(t, tt.status, w.Code, w.Body.String())
			env := decodeEnvelope(t, w)
			if tt.code == "" {
				assert.Nil(t, env.Error)
				assert.JSONEq(t, `{"id":"user-new","email":"new@example.com","created_at":"2026-03-01T12:00:00Z"}`, string(env.Data))
				return
			}
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	auth := newFakeAuthService()
	c, registry := newAuthController(auth)

	w := httptest.NewRecorder()
	c.Login(w, newRequest(http.MethodPost, "/auth/login", `{"email":"member@example.com","password":"correct horse"}`, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SessionResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "token-1", resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotNil(t, resp.ExpiresAt)
	assert.Equal(t, domain.RoleMember, resp.Session.Role)
	require.NotNil(t, resp.Session.Identity)
	assert.Equal(t, "member@example.com", resp.Session.Identity.Email)
	assert.False(t, resp.Session.Loading)
	assert.Equal(t, 1, registry.Len())

	w = httptest.NewRecorder()
	c.Login(w, newRequest(http.MethodPost, "/auth/login", `{"email":"member@example.com","password":"wrong"}`, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_Logout(t *testing.T) {
	auth := newFakeAuthService()
	c, registry := newAuthController(auth)
	token := auth.issue(memberSession())
	store, err := registry.Acquire(context.Background(), token)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c.Logout(w, newRequest(http.MethodPost, "/auth/logout", "", store))
	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	decodeData(t, w, &resp)
	assert.Equal(t, domain.RoleAnonymous, resp.Session.Role)
	assert.Nil(t, resp.Session.Identity)
	assert.Equal(t, 1, auth.signOuts)
	assert.Equal(t, 0, registry.Len())

	// Signing out again, or without a session, succeeds without another provider call.
	for _, st := range []*session.Store{store, nil} {
		w = httptest.NewRecorder()
		c.Logout(w, newRequest(http.MethodPost, "/auth/logout", "", st))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 1, auth.signOuts)
}

func TestAuthController_Session(t *testing.T) {
	c, _ := newAuthController(newFakeAuthService())

	w := httptest.NewRecorder()
	c.Session(w, newRequest(http.MethodGet, "/auth/session", "", nil))
	var resp SessionResponse
	decodeData(t, w, &resp)
	assert.Equal(t, domain.RoleAnonymous, resp.Session.Role)
	assert.Nil(t, resp.ExpiresAt)

	w = httptest.NewRecorder()
	c.Session(w, newRequest(http.MethodGet, "/auth/session", "", newStore(adminSession())))
	resp = SessionResponse{}
	decodeData(t, w, &resp)
	assert.Equal(t, domain.RoleAdmin, resp.Session.Role)
	assert.Equal(t, []string{"admin"}, resp.Session.Claims.Roles)
	require.NotNil(t, resp.ExpiresAt)
	assert.Empty(t, resp.Token)
}

func TestAuthController_Refresh_updates_live_session(t *testing.T) {
	auth := newFakeAuthService()
	auth.refreshTo = []string{domain.RoleCodeAdmin}
	c, registry := newAuthController(auth)
	store, err := registry.Acquire(context.Background(), auth.issue(memberSession()))
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, store.State().Role)

	w := httptest.NewRecorder()
	c.Refresh(w, newRequest(http.MethodPost, "/auth/refresh", "", store))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SessionResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "token-2", resp.Token)
	assert.Equal(t, domain.RoleAdmin, resp.Session.Role)
	assert.Equal(t, domain.RoleAdmin, store.State().Role, "the held store follows the refreshed claims")
	assert.Equal(t, 1, registry.Len())
}

func TestAuthController_Refresh_anonymous(t *testing.T) {
	c, _ := newAuthController(newFakeAuthService())
	w := httptest.NewRecorder()
	c.Refresh(w, newRequest(http.MethodPost, "/auth/refresh", "", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
