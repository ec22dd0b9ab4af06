// Package inmemorystore provides an ephemeral, in-memory implementation of
// the recordstore.Store interface.
//
// # Characteristics
//
//   - **Ephemeral:** Created fresh for each runtime, never persisted
//   - **Grow-only:** Records are replaced, never removed
//   - **Observer-safe:** An RWMutex lets status endpoints read a snapshot
//     from other goroutines while the event loop writes
//
// # Concurrency Model
//
// Correctness does not depend on the mutex: all writes come from the single
// event-loop goroutine. The lock exists so that Snapshot can be served to
// HTTP handlers without racing those writes.
package inmemorystore
