// Package identity models the init data a Mini App host supplies at launch and
// a subscribable signal carrying the latest snapshot.
package identity

import (
	"sync"
	"time"
)

// User is the identity record of the person who opened the Mini App.
// Optional booleans stay nil when the host omits them.
type User struct {
	ID              int64  `json:"id" validate:"required"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Username        string `json:"username,omitempty"`
	LanguageCode    string `json:"language_code,omitempty"`
	IsPremium       *bool  `json:"is_premium,omitempty"`
	AllowsWriteToPM *bool  `json:"allows_write_to_pm,omitempty"`
}

// InitData is the host snapshot: an optional user plus session attributes.
type InitData struct {
	User         *User
	AuthDate     time.Time
	ChatInstance string
	ChatType     string
	QueryID      string
	StartParam   string
	Hash         string
}

// HasUser reports whether the snapshot carries a user record.
func (d *InitData) HasUser() bool {
	return d != nil && d.User != nil
}

// Signal holds the latest InitData and notifies subscribers on change.
type Signal struct {
	mu    sync.Mutex
	value *InitData
	subs  map[int]func(*InitData)
	next  int
}

// NewSignal creates a signal with an initial value, which may be nil.
func NewSignal(initial *InitData) *Signal {
	return &Signal{value: initial, subs: make(map[int]func(*InitData))}
}

// Get returns the current snapshot.
func (s *Signal) Get() *InitData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the snapshot and notifies subscribers if it changed.
func (s *Signal) Set(v *InitData) {
	s.mu.Lock()
	if s.value == v {
		s.mu.Unlock()
		return
	}
	s.value = v
	fns := make([]func(*InitData), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Subscribe registers fn for future changes and returns an unsubscribe func.
func (s *Signal) Subscribe(fn func(*InitData)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
