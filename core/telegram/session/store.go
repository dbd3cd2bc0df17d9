// Package session keeps per-user screen state in memory.
package session

import "sync"

// Closer is implemented by values that hold timers or handlers.
type Closer interface {
	Close()
}

// Store maps Telegram user ids to a value. Replaced or deleted values that
// implement Closer are closed.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[int64]T
}

// NewStore returns an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{items: make(map[int64]T)}
}

// Get returns the value for userID.
func (s *Store[T]) Get(userID int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[userID]
	return v, ok
}

// Put stores v and closes the value it replaces.
func (s *Store[T]) Put(userID int64, v T) {
	s.mu.Lock()
	old, had := s.items[userID]
	s.items[userID] = v
	s.mu.Unlock()
	if had {
		closeValue(old)
	}
}

// Delete removes and closes the value for userID.
func (s *Store[T]) Delete(userID int64) {
	s.mu.Lock()
	old, had := s.items[userID]
	delete(s.items, userID)
	s.mu.Unlock()
	if had {
		closeValue(old)
	}
}

// Len returns the number of live sessions.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// CloseAll closes and drops every value.
func (s *Store[T]) CloseAll() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[int64]T)
	s.mu.Unlock()
	for _, v := range items {
		closeValue(v)
	}
}

func closeValue(v any) {
	if c, ok := v.(Closer); ok && c != nil {
		c.Close()
	}
}
