// Package record defines the lifecycle records the runtime keeps for every
// module id.
//
// A record is an immutable value. Moving a module forward in its lifecycle
// means building a new record and handing it to the record store; nothing
// ever edits a record that the store already owns. Code that needs a module
// later keeps its id, never a record it read earlier.
//
// Lifecycle:
//
//	Loading  ─┐
//	          ├─> Pending ─> Ready | Failed
//	Declared ─┘
package record

import "fmt"

// OpID identifies one top-level load operation. It is propagated to every
// nested resolution that operation triggers and is the only signal used to
// detect a dependency chain looping back on itself.
type OpID string

// State enumerates the five record variants.
type State int

const (
	// StateDeclared means an initializer is registered but not started.
	StateDeclared State = iota
	// StateLoading means a source fetch for the id is in flight.
	StateLoading
	// StatePending means the module's dependencies are being resolved.
	StatePending
	// StateReady is terminal success.
	StateReady
	// StateFailed is terminal failure.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDeclared:
		return "declared"
	case StateLoading:
		return "loading"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsTerminal reports whether no further transition is possible from s.
func (s State) IsTerminal() bool {
	return s == StateReady || s == StateFailed
}

// Callback is a party waiting on a module. It receives the id it waited on
// and the record that unblocked it.
type Callback func(id string, r Record)

// Record is implemented by Declared, Loading, Pending, Ready and Failed.
type Record interface {
	State() State
}

// Waiting is implemented by the non-terminal records that accumulate callbacks.
type Waiting interface {
	Record
	Waiters() []Callback
}

// CommonJS is the mutable exports placeholder of a module under
// initialization. It is shared with the `module` and `exports`
// pseudo-dependencies so that circular consumers observe a partial object
// before the factory finishes.
type CommonJS struct {
	ID      string `json:"id"`
	Exports any    `json:"exports"`
}

// Declared holds a registered but not yet started initializer.
type Declared struct {
	Deps      []string
	Callbacks []Callback
	// Init starts initialization under the given load operation.
	Init func(op OpID)
}

// Loading is an in-flight source fetch.
type Loading struct {
	Op        OpID
	Locator   string
	Callbacks []Callback
}

// Pending is a module whose dependencies are being resolved.
type Pending struct {
	Op        OpID
	Callbacks []Callback
	Module    *CommonJS
}

// Ready is terminal success.
type Ready struct {
	Exports any
}

// Failed is terminal failure.
type Failed struct {
	Err error
}

func (Declared) State() State { return StateDeclared }
func (Loading) State() State  { return StateLoading }
func (Pending) State() State  { return StatePending }
func (Ready) State() State    { return StateReady }
func (Failed) State() State   { return StateFailed }

func (r Declared) Waiters() []Callback { return r.Callbacks }
func (r Loading) Waiters() []Callback  { return r.Callbacks }
func (r Pending) Waiters() []Callback  { return r.Callbacks }

// Append returns a copy of cbs with cb added. The input slice is never
// written, so a record built from it stays untouched.
func Append(cbs []Callback, cb Callback) []Callback {
	out := make([]Callback, len(cbs), len(cbs)+1)
	copy(out, cbs)
	return append(out, cb)
}

// WithCallback returns a copy of w with cb appended to its waiters.
// It returns false for terminal records.
func WithCallback(r Record, cb Callback) (Record, bool) {
	switch v := r.(type) {
	case Declared:
		v.Callbacks = Append(v.Callbacks, cb)
		return v, true
	case Loading:
		v.Callbacks = Append(v.Callbacks, cb)
		return v, true
	case Pending:
		v.Callbacks = Append(v.Callbacks, cb)
		return v, true
	default:
		return r, false
	}
}

// Exports returns the value a dependent observes for r: the final exports of
// a Ready record or the live placeholder of a Pending one.
func Exports(r Record) (any, bool) {
	switch v := r.(type) {
	case Ready:
		return v.Exports, true
	case Pending:
		if v.Module == nil {
			return nil, true
		}
		return v.Module.Exports, true
	default:
		return nil, false
	}
}
