package store

import (
	"sort"
	"sync"

	"github.com/pineunity/apmec-horizon/internal/reconciler"
)

var _ reconciler.Scope = (*Scope)(nil)

// Scope stores the display lists of one session.
type Scope struct {
	mu    sync.RWMutex
	lists map[reconciler.Key]reconciler.List
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{
		lists: make(map[reconciler.Key]reconciler.List),
	}
}

// Get returns the list stored under key, or nil. The returned slice is a
// copy; the rows are shared.
func (s *Scope) Get(key reconciler.Key) reconciler.List {
	s.mu.RLock()
	list, ok := s.lists[key]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	out := make(reconciler.List, len(list))
	copy(out, list)
	return out
}

// Clear removes the list stored under key.
func (s *Scope) Clear(key reconciler.Key) {
	s.mu.Lock()
	delete(s.lists, key)
	s.mu.Unlock()
}

// Keys returns the keys with a stored list, sorted.
func (s *Scope) Keys() []reconciler.Key {
	s.mu.RLock()
	keys := make([]reconciler.Key, 0, len(s.lists))
	for k := range s.lists {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Update replaces the list under key with fn's result. fn runs under the
// write lock; if it panics the stored list is left unchanged.
func (s *Scope) Update(key reconciler.Key, fn func(current reconciler.List) reconciler.List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = fn(s.lists[key])
}

// View runs fn with the list under key while holding the read lock.
func (s *Scope) View(key reconciler.Key, fn func(current reconciler.List)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.lists[key])
}
