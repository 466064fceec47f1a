// Package kvstore provides the generic in-memory keyed store and the
// simulated clock that back the service's persistence collaborator.
package kvstore

import "sync"

// Store is a concurrency-safe map of string keys to values of type T.
// All mutation happens under a single lock; Update gives callers an atomic
// read-modify-write against one key.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty Store.
func New[T any]() *Store[T] {
	return &Store[T]{items: make(map[string]T)}
}

// Get returns the value for key, if present.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Set stores value under key, replacing any existing value.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Delete removes key. It reports whether the key existed.
func (s *Store[T]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[key]
	delete(s.items, key)
	return ok
}

// Update applies fn to the current value for key under the store lock.
// fn receives the value (zero value if absent) and whether it was present,
// and returns the new value and whether to keep it. Returning keep=false
// when the key was present deletes it; when absent it is a no-op.
// The lock is held for the duration of fn, so concurrent Updates on the
// same key are serialized.
func (s *Store[T]) Update(key string, fn func(value T, ok bool) (T, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	next, keep := fn(v, ok)
	if keep {
		s.items[key] = next
	} else if ok {
		delete(s.items, key)
	}
}

// Filter returns all values for which pred returns true.
func (s *Store[T]) Filter(pred func(key string, value T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for k, v := range s.items {
		if pred(k, v) {
			out = append(out, v)
		}
	}
	return out
}

// FilterWithKeys returns matching keys and values in corresponding order.
func (s *Store[T]) FilterWithKeys(pred func(key string, value T) bool) ([]string, []T) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	var vals []T
	for k, v := range s.items {
		if pred(k, v) {
			keys = append(keys, k)
			vals = append(vals, v)
		}
	}
	return keys, vals
}

// Len returns the number of stored values.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot returns a copy of the full contents.
func (s *Store[T]) Snapshot() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]T, len(s.items))
	for k, v := range s.items {
		out[k] = v
	}
	return out
}

// LoadSnapshot replaces the full contents with a copy of m.
func (s *Store[T]) LoadSnapshot(m map[string]T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T, len(m))
	for k, v := range m {
		s.items[k] = v
	}
}

// Reset clears all contents.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}
