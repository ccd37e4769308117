package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
)

// SessionAcquirer resolves a bearer token to the caller's session store.
type SessionAcquirer interface {
	Acquire(ctx context.Context, token string) (*session.Store, error)
}

// Session attaches the caller's session store to the request context. A
// missing or rejected token leaves the caller anonymous; the access guard
// decides what an anonymous caller may see. When the provider cannot be
// reached the request fails with 503 rather than silently downgrading.
func Session(acquirer SessionAcquirer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, err := acquirer.Acquire(r.Context(), BearerToken(r))
			if err != nil {
				if errors.Is(err, domain.ErrTransport) {
					logger.ErrorContext(r.Context(), "session resolution failed", "path", r.URL.Path, "err", err)
					h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeTransport, "session provider unavailable")
					return
				}
				logger.DebugContext(r.Context(), "session rejected", "path", r.URL.Path, "err", err)
			}
			next.ServeHTTP(w, r.WithContext(session.WithStore(r.Context(), store)))
		})
	}
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
