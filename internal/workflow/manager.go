package workflow

import "sync"

// Manager keeps one Workflow per admin session.
type Manager struct {
	events Events
	stale  StaleRecorder

	mu    sync.Mutex
	flows map[string]*Workflow
}

func NewManager(events Events, stale StaleRecorder) *Manager {
	return &Manager{
		events: events,
		stale:  stale,
		flows:  make(map[string]*Workflow),
	}
}

// Get returns the workflow for sessionID, creating it on first use.
func (m *Manager) Get(sessionID string) *Workflow {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.flows[sessionID]
	if !ok {
		w = New(m.events, m.stale)
		m.flows[sessionID] = w
	}
	return w
}

// Release tears down and forgets the workflow for sessionID. It matches the
// session registry's release hook.
func (m *Manager) Release(sessionID string) {
	m.mu.Lock()
	w, ok := m.flows[sessionID]
	delete(m.flows, sessionID)
	m.mu.Unlock()
	if ok {
		w.Teardown()
	}
}

// Len reports how many workflows are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}
