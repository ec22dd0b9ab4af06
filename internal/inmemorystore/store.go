package inmemorystore

import (
	"sync"

	"github.com/vk/amdgo/internal/record"
	"github.com/vk/amdgo/internal/recordstore"
)

// Store is an in-memory implementation of recordstore.Store.
type Store struct {
	mu      sync.RWMutex
	records map[string]record.Record
}

// New creates a new, empty in-memory record store.
func New() recordstore.Store {
	return &Store{records: make(map[string]record.Record)}
}

// Get retrieves the current record of a module.
func (s *Store) Get(id string) (record.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// Set replaces the record of a module.
func (s *Store) Set(id string, r record.Record) {
	if r == nil {
		panic("inmemorystore: nil record for " + id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = r
}

// Snapshot returns the current state of every module.
func (s *Store) Snapshot() map[string]record.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]record.State, len(s.records))
	for id, r := range s.records {
		out[id] = r.State()
	}
	return out
}
