package async

import "sync"

// Tracker hands out validity tokens. Starting a new request or closing the
// tracker invalidates every token issued before.
type Tracker struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
}

// Token identifies one request issued by a Tracker.
type Token struct {
	t   *Tracker
	gen uint64
}

// Begin invalidates outstanding tokens and returns a fresh one. After Close
// the returned token is never valid.
func (t *Tracker) Begin() Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	return Token{t: t, gen: t.gen}
}

// Invalidate discards every outstanding token without issuing a new one.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	t.gen++
	t.mu.Unlock()
}

// Close invalidates outstanding tokens permanently.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.gen++
	t.closed = true
	t.mu.Unlock()
}

// Valid reports whether the token is still the latest one and the tracker is open.
func (k Token) Valid() bool {
	if k.t == nil {
		return false
	}
	k.t.mu.Lock()
	defer k.t.mu.Unlock()
	return !k.t.closed && k.gen == k.t.gen
}
