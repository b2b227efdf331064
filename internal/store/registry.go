package store

import (
	"sync"
	"time"

	"github.com/pineunity/apmec-horizon/pkg/logging"
)

type entry struct {
	scope    *Scope
	lastSeen time.Time
}

// Registry maps session ids to their scopes.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Scope returns the scope of session id, creating it on first use, and marks
// the session as seen.
func (r *Registry) Scope(id string) *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &entry{scope: NewScope()}
		r.entries[id] = e
		logging.Debug("Store", "Created scope for session %s", logging.TruncateSessionID(id))
	}
	e.lastSeen = r.now()
	return e.scope
}

// Drop forgets the scope of session id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Len returns the number of live scopes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops the scopes of sessions not seen for longer than idle and
// returns how many were dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	dropped := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			dropped++
		}
	}
	return dropped
}
