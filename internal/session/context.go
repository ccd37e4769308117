package session

import "context"

type contextKey struct{}

// WithStore returns a context carrying the caller's session store.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the caller's store, or a settled anonymous store when
// none was attached.
func FromContext(ctx context.Context) *Store {
	if s, ok := ctx.Value(contextKey{}).(*Store); ok && s != nil {
		return s
	}
	return Anonymous()
}
