package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const (
	eventA = "7f1c2a5e-4b1d-4c5e-9a77-1d2e3f4a5b6c"
	eventB = "0a9b8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptrTo[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvent(id, title string) *domain.Event {
	start := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	return &domain.Event{
		ID:        id,
		Title:     title,
		EventType: domain.EventTypeHackathon,
		StartDate: start,
		EndDate:   start.Add(48 * time.Hour),
		Status:    domain.EventStatusUpcoming,
		Version:   2,
	}
}

type fakeEventService struct {
	events  map[string]*domain.Event
	listErr error
	err     error

	calls      []string
	lastActor  domain.Actor
	lastFields domain.EventFields
	lastPatch  domain.EventPatch
	lastParams domain.PaginationParams
}

func newFakeEventService(events ...*domain.Event) *fakeEventService {
	f := &fakeEventService{events: make(map[string]*domain.Event)}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	f.calls = append(f.calls, "list")
	f.lastParams = params
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.Event, 0, len(f.events))
	for _, id := range []string{eventA, eventB} {
		if e, ok := f.events[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	f.calls = append(f.calls, "get")
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.Clone(), nil
}

func (f *fakeEventService) CreateEvent(ctx context.Context, actor domain.Actor, fields domain.EventFields) (*domain.Event, error) {
	f.calls = append(f.calls, "create")
	f.lastActor, f.lastFields = actor, fields
	if f.err != nil {
		return nil, f.err
	}
	e := domain.NewEvent(fields, testNow)
	e.ID = eventB
	f.events[e.ID] = e
	return e.Clone(), nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, actor domain.Actor, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.calls = append(f.calls, "update")
	f.lastActor, f.lastPatch = actor, patch
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := e.Clone()
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	next.Version++
	f.events[id] = next
	return next.Clone(), nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, actor domain.Actor, id string) error {
	f.calls = append(f.calls, "delete")
	f.lastActor = actor
	if f.err != nil {
		return f.err
	}
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func newStore(sess *domain.AuthSession) *session.Store {
	store := session.NewStore(nil, nil, domain.NewAdminPredicate(nil))
	store.Attach(sess)
	return store
}

func memberSession() *domain.AuthSession {
	return &domain.AuthSession{
		ID:        "sess-member",
		Identity:  domain.Identity{ID: "user-1", Email: "member@example.com", CreatedAt: testNow.AddDate(-1, 0, 0)},
		Claims:    domain.Claims{Roles: []string{domain.RoleCodeMember}},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func adminSession() *domain.AuthSession {
	return &domain.AuthSession{
		ID:        "sess-admin",
		Identity:  domain.Identity{ID: "admin-1", Email: "admin@example.com"},
		Claims:    domain.Claims{Roles: []string{domain.RoleCodeAdmin}},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// newRequest builds a request carrying store and the given chi URL params
// as key/value pairs.
func newRequest(method, target, body string, store *session.Store, params ...string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if store != nil {
		ctx = session.WithStore(ctx, store)
	}
	return r.WithContext(ctx)
}

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.Nil(t, env.Error, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dest))
}
