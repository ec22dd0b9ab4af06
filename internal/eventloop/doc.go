// Package eventloop provides the single logical thread of control the module
// runtime runs on.
//
// # Execution Model
//
// A Loop wraps a github.com/dop251/goja_nodejs event loop. Run drives that
// loop on the calling goroutine. A task queued while another task runs is
// executed on a later turn, never inline, which is what gives the runtime
// its "callbacks never fire before the registering call returns" guarantee.
//
// Blocking work (fetching a module's source) is started with Go. The work
// function runs on its own goroutine; the continuation it returns is queued
// as a normal task, so all state changes still happen on the loop goroutine.
//
// # Termination
//
// Run returns nil once no queued task or Go work is left, the context error
// if the context is cancelled first, or a *PanicError if a task panics. Tasks
// queued behind a panicking task are dropped.
//
// # Thread Safety
//
// Submit, Defer and Go must be called from a task running on the loop, or
// from the goroutine that calls Run before Run starts. Continuations of Go
// work are handed back to the loop from any goroutine.
package eventloop
