package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/delivery/http/middleware"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
	"github.com/Chakshu098/Everhack/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	mu       sync.Mutex
	sessions map[string]*domain.AuthSession
	accounts map[string]*domain.AuthSession
}

func newStubAuth() *stubAuth {
	expires := time.Now().Add(time.Hour)
	return &stubAuth{
		sessions: map[string]*domain.AuthSession{
			"member-token": {ID: "s-member", Identity: domain.Identity{ID: "u-member", Email: "m@example.com"}, Claims: domain.Claims{Roles: []string{"member"}}, ExpiresAt: expires},
			"admin-token":  {ID: "s-admin", Identity: domain.Identity{ID: "u-admin", Email: "a@example.com"}, Claims: domain.Claims{Roles: []string{"admin"}}, ExpiresAt: expires},
		},
		accounts: map[string]*domain.AuthSession{
			"a@example.com": {ID: "s-login", Identity: domain.Identity{ID: "u-admin", Email: "a@example.com"}, Claims: domain.Claims{Roles: []string{"admin"}}, ExpiresAt: expires},
		},
	}
}

func (s *stubAuth) SignUp(ctx context.Context, email, password string, fullName *string) (*domain.User, error) {
	return &domain.User{ID: "u-new", Email: email}, nil
}

func (s *stubAuth) Login(ctx context.Context, email, password string) (string, *domain.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.accounts[email]
	if !ok || password != "secret-password" {
		return "", nil, domain.ErrUnauthorized
	}
	s.sessions["login-token"] = sess
	cp := *sess
	return "login-token", &cp, nil
}

func (s *stubAuth) Refresh(ctx context.Context, current *domain.AuthSession) (string, *domain.AuthSession, error) {
	return "", nil, domain.ErrUnauthorized
}

func (s *stubAuth) Resolve(ctx context.Context, token string) (*domain.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	cp := *sess
	return &cp, nil
}

func (s *stubAuth) SignOut(ctx context.Context, sess *domain.AuthSession) error { return nil }

type stubEvents struct {
	mu     sync.Mutex
	events []*domain.Event
	calls  []string
}

func (s *stubEvents) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *stubEvents) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	s.record("list")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (s *stubEvents) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	s.record("get")
	return nil, domain.ErrNotFound
}

func (s *stubEvents) CreateEvent(ctx context.Context, actor domain.Actor, fields domain.EventFields) (*domain.Event, error) {
	s.record("create")
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	e := domain.NewEvent(fields, time.Now())
	e.ID = "3f2b8e1a-9c4d-4e6f-8a1b-2c3d4e5f6a7b"
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	return e.Clone(), nil
}

func (s *stubEvents) UpdateEvent(ctx context.Context, actor domain.Actor, id string, patch domain.EventPatch) (*domain.Event, error) {
	s.record("update")
	return nil, domain.ErrNotFound
}

func (s *stubEvents) DeleteEvent(ctx context.Context, actor domain.Actor, id string) error {
	s.record("delete")
	return domain.ErrNotFound
}

func (s *stubEvents) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type stubDashboards struct{}

func (stubDashboards) Member(ctx context.Context, identity domain.Identity) (*domain.MemberDashboard, error) {
	return &domain.MemberDashboard{Identity: identity}, nil
}

func (stubDashboards) Admin(ctx context.Context, identity domain.Identity) (*domain.AdminDashboard, error) {
	return &domain.AdminDashboard{Identity: identity}, nil
}

type stubAttendees struct{}

func (stubAttendees) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.EventRegistration, bool, error) {
	return domain.NewEventRegistration(eventID, userID, domain.RegistrationRegistered, time.Now()), true, nil
}

func (stubAttendees) ListRegistrationsForUser(ctx context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	return nil, nil
}

type testServer struct {
	handler  http.Handler
	events   *stubEvents
	registry *session.Registry
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := newStubAuth()
	events := &stubEvents{}
	registry := session.NewRegistry(auth, session.NewHub(), domain.NewAdminPredicate(nil), nil)
	manager := workflow.NewManager(events, nil)
	registry.OnRelease(manager.Release)

	return &testServer{
		handler: NewRouter(RouterDeps{
			Logger:       logger,
			LoginLimiter: limiter,
			Sessions:     registry,
			Auth:         auth,
			Events:       events,
			Attendees:    stubAttendees{},
			Dashboards:   stubDashboards{},
			Workflows:    manager,
		}),
		events:   events,
		registry: registry,
	}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, helpers.APIResponse) {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	var resp helpers.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

const newEventBody = `{"title":"Spring Hack","event_type":"hackathon","start_date":"2026-04-10","end_date":"2026-04-12"}`

func TestRouter_guards(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     string
		status   int
		code     string
		redirect string
	}{
		{"anonymous create", http.MethodPost, "/admin/events", "", newEventBody, http.StatusUnauthorized, "unauthorized", "/login"},
		{"member create", http.MethodPost, "/admin/events", "member-token", newEventBody, http.StatusForbidden, "forbidden", "/dashboard"},
		{"rejected token is anonymous", http.MethodGet, "/dashboard", "forged", "", http.StatusUnauthorized, "unauthorized", "/login"},
		{"member admin console", http.MethodGet, "/admin/dashboard", "member-token", "", http.StatusForbidden, "forbidden", "/dashboard"},
		{"anonymous workflow", http.MethodGet, "/admin/workflow", "", "", http.StatusUnauthorized, "unauthorized", "/login"},
		{"anonymous registration", http.MethodPost, "/events/3f2b8e1a-9c4d-4e6f-8a1b-2c3d4e5f6a7b/registrations", "", "", http.StatusUnauthorized, "unauthorized", "/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			w, resp := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.redirect, resp.Error.Redirect)
			assert.Empty(t, s.events.Calls(), "a denied request must not reach the backend")
		})
	}
}

func TestRouter_allowed(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{"public list", http.MethodGet, "/events", "", "", http.StatusOK},
		{"health", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"session", http.MethodGet, "/auth/session", "member-token", "", http.StatusOK},
		{"member dashboard", http.MethodGet, "/dashboard", "member-token", "", http.StatusOK},
		{"admin may use member pages", http.MethodGet, "/dashboard", "admin-token", "", http.StatusOK},
		{"admin console", http.MethodGet, "/admin/dashboard", "admin-token", "", http.StatusOK},
		{"admin create", http.MethodPost, "/admin/events", "admin-token", newEventBody, http.StatusCreated},
		{"member registers", http.MethodPost, "/events/3f2b8e1a-9c4d-4e6f-8a1b-2c3d4e5f6a7b/registrations", "member-token", "", http.StatusCreated},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			w, _ := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRouter_login_is_rate_limited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := newTestServer(t, limiter)
	body := `{"email":"a@example.com","password":"secret-password"}`

	w, _ := s.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := s.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "rate_limited", resp.Error.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

// An admin signs in, creates an event through the workflow, sees it in the
// refreshed list, then signs out and loses access.
func TestRouter_admin_workflow_end_to_end(t *testing.T) {
	s := newTestServer(t, nil)

	w, resp := s.do(t, http.MethodPost, "/auth/login", "", `{"email":"a@example.com","password":"secret-password"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := resp.Data.(map[string]any)["token"].(string)

	w, _ = s.do(t, http.MethodPost, "/admin/workflow/create", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(t, http.MethodPut, "/admin/workflow/draft", token, newEventBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = s.do(t, http.MethodPost, "/admin/workflow/submit", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := resp.Data.(map[string]any)
	assert.Equal(t, "idle", snap["phase"])
	assert.Equal(t, "event created", snap["notice"].(map[string]any)["message"])
	listed := snap["events"].(map[string]any)
	assert.Equal(t, "success", listed["status"])
	assert.Len(t, listed["value"], 1)
	assert.Equal(t, []string{"create", "list"}, s.events.Calls())

	w, _ = s.do(t, http.MethodPost, "/admin/workflow/submit", token, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPost, "/auth/logout", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.registry.Len())
}

func TestRouter_cors_preflight(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewRouter(RouterDeps{
		Logger:             logger,
		CORSAllowedOrigins: []string{"https://everhack.dev"},
		Sessions:           session.NewRegistry(newStubAuth(), session.NewHub(), nil, nil),
		Auth:               newStubAuth(),
		Events:             &stubEvents{},
		Attendees:          stubAttendees{},
		Dashboards:         stubDashboards{},
		Workflows:          workflow.NewManager(&stubEvents{}, nil),
	})
	r := httptest.NewRequest(http.MethodOptions, "/admin/events", nil)
	r.Header.Set("Origin", "https://everhack.dev")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://everhack.dev", w.Header().Get("Access-Control-Allow-Origin"))
}
