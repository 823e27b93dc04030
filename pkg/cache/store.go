package cache

import "sync"

// entryStore maps keys to payloads. Point operations are safe for concurrent
// use; keeping the store consistent with the recency list is the engine's job.
type entryStore[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

func newEntryStore[V any](capacity int) *entryStore[V] {
	return &entryStore[V]{
		items: make(map[string]V, capacity),
	}
}

func (s *entryStore[V]) tryGet(key string) (V, bool) {
	s.mu.RLock()
	value, ok := s.items[key]
	s.mu.RUnlock()
	return value, ok
}

// set inserts or overwrites key and reports whether the key was new.
func (s *entryStore[V]) set(key string, value V) bool {
	s.mu.Lock()
	_, existed := s.items[key]
	s.items[key] = value
	s.mu.Unlock()
	return !existed
}

func (s *entryStore[V]) remove(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return value, ok
}

func (s *entryStore[V]) clear() {
	s.mu.Lock()
	s.items = make(map[string]V)
	s.mu.Unlock()
}

func (s *entryStore[V]) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *entryStore[V]) contains(key string) bool {
	s.mu.RLock()
	_, ok := s.items[key]
	s.mu.RUnlock()
	return ok
}
