// Package engine is the module-loading runtime: the dependency orchestrator,
// the define handler and the require entry points, all built over a
// recordstore.Store and driven by an eventloop.Loop.
//
// # Execution model
//
// Every method of Runtime runs on the loop goroutine (or before the loop is
// started). Fetches are the only work done elsewhere; their completions are
// queued back onto the loop as continuations. A callback registered through
// any entry point is never invoked in the same turn that registered it.
//
// # Load operations
//
// Each top-level RequireAll allocates a fresh operation id (OpID). The id is
// threaded through every nested request and is how the orchestrator tells a
// dependency chain that loops back on itself (same op, module Pending) from
// an unrelated load that merely overlaps in time (different op).
package engine
