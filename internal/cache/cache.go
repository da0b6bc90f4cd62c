// Package cache memoizes per-source crawl results for a fixed time window.
package cache

import (
	"sync"
	"time"

	"github.com/steamgram/steamgram/internal/metrics"
	"github.com/steamgram/steamgram/internal/screenshot"
)

// Clock abstracts time.Now so TTL behavior is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type entry struct {
	items    []screenshot.Screenshot
	storedAt time.Time
}

// Store holds one crawl snapshot per source. Entries are replaced wholesale
// on each successful crawl and treated as absent once older than the TTL.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry
}

// New builds a Store with the given TTL.
func New(ttl time.Duration, clock Clock) *Store {
	if clock == nil {
		clock = systemClock{}
	}
	return &Store{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns the cached snapshot for sourceID, or false when absent or stale.
func (s *Store) Get(sourceID string) ([]screenshot.Screenshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sourceID]
	if !ok {
		metrics.ObserveCacheLookup("miss")
		return nil, false
	}
	if s.clock.Now().Sub(e.storedAt) > s.ttl {
		metrics.ObserveCacheLookup("stale")
		delete(s.entries, sourceID)
		return nil, false
	}
	metrics.ObserveCacheLookup("hit")
	return e.items, true
}

// Put replaces the snapshot for sourceID.
func (s *Store) Put(sourceID string, items []screenshot.Screenshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sourceID] = entry{items: items, storedAt: s.clock.Now()}
}

// Clear drops all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

// Len reports the number of live entries, counting stale ones until evicted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
