// Package memory keeps challenges in a process-local map with per-entry expiry.
package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

// Store is safe for concurrent use. Expired entries are dropped lazily on access
// and by Sweep.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New returns a store whose entries live for ttl after every Set.
// A zero ttl means entries never expire.
func New(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Set(_ context.Context, id, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{value: value, expires: s.expiry()}
	return nil
}

func (s *Store) Get(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(id)
	return e.value, ok, nil
}

// MarkVerified overwrites the value but keeps the original expiry. Unknown
// ids are ignored.
func (s *Store) MarkVerified(_ context.Context, id, sentinel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.lookup(id); ok {
		e.value = sentinel
		s.entries[id] = e
	}
	return nil
}

func (s *Store) CompareAndSwap(_ context.Context, id, old, new string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(id)
	if !ok || e.value != old {
		return false, nil
	}
	e.value = new
	s.entries[id] = e
	return true, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	now := s.now()
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Len counts live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	now := s.now()
	for _, e := range s.entries {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}

// lookup must be called with mu held.
func (s *Store) lookup(id string) (entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return entry{}, false
	}
	if s.expired(e, s.now()) {
		delete(s.entries, id)
		return entry{}, false
	}
	return e, true
}

func (s *Store) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func (s *Store) expired(e entry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}
