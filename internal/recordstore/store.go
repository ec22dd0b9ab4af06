// Package recordstore defines the interface for the module registry: the
// mapping from canonical module id to that module's current lifecycle record.
//
// # Why Record Store Exists
//
// The store is the single source of truth for module state. Every other
// component keeps ids, never records, and asks the store for the current
// record whenever it needs one. This replaces "mutate the object someone
// captured" with an auditable sequence of whole-record replacements.
//
// # Lifecycle and Usage
//
// The record store is:
//  1. **Created** once per runtime instance
//  2. **Grown** as modules are declared or first requested
//  3. **Mutated** only by replacing a record with its successor
//  4. **Never reset**: records are not deleted for the life of the runtime
//
// # Concurrency
//
// All writes happen on the runtime's event-loop goroutine, so the store needs
// no locking discipline of its own for correctness. Any code path that reads
// a record and later writes one must re-read first; the record it saw may
// have been superseded in between.
package recordstore

import "github.com/vk/amdgo/internal/record"

// Store is the module registry.
type Store interface {
	// Get returns the current record for id.
	Get(id string) (record.Record, bool)

	// Set replaces the record for id. Partial updates do not exist: callers
	// build the complete successor record and hand it over.
	Set(id string, r record.Record)

	// Snapshot returns the state of every known module. It is the only
	// method that observers outside the event loop (status endpoints,
	// metrics scrapes) may call.
	Snapshot() map[string]record.State
}
