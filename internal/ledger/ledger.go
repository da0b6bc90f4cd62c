// Package ledger records which detail pages have already been posted.
//
// Two interchangeable backing stores exist: a JSON snapshot file for local
// runs, and a Postgres table for deployments. Membership tests are always
// served from the in-memory set; Persist pushes the set to durable storage.
package ledger

import (
	"context"
	"sync"
)

// Ledger is the durable, idempotent record of processed identifiers.
type Ledger interface {
	// Contains reports whether id has been posted.
	Contains(id string) bool

	// Add records id in memory. Callers must invoke Persist separately;
	// a failed Persist leaves the in-memory set intact.
	Add(id string)

	// Persist writes the current set to durable storage.
	Persist(ctx context.Context) error

	// Load replaces the in-memory set with durable contents. A missing
	// durable record is not an error; it yields an empty ledger.
	Load(ctx context.Context) error

	// Reset clears the set and persists the empty state.
	Reset(ctx context.Context) error

	// Size reports current membership count.
	Size() int
}

// memberSet is the shared in-memory portion of every ledger implementation.
type memberSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func newMemberSet() memberSet {
	return memberSet{ids: make(map[string]struct{})}
}

func (m *memberSet) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ids[id]
	return ok
}

func (m *memberSet) Add(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = struct{}{}
}

func (m *memberSet) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Members returns the current identifiers in unspecified order.
func (m *memberSet) Members() []string {
	return m.snapshot()
}

func (m *memberSet) snapshot() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	return out
}

func (m *memberSet) replace(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	m.mu.Lock()
	m.ids = next
	m.mu.Unlock()
}

func (m *memberSet) clear() {
	m.mu.Lock()
	m.ids = make(map[string]struct{})
	m.mu.Unlock()
}
