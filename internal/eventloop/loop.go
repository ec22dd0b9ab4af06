package eventloop

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/dop251/goja"
	nodeloop "github.com/dop251/goja_nodejs/eventloop"
)

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("event loop task panicked: %v", e.Value)
}

// Unwrap exposes a panicked error value to errors.Is and errors.As.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Loop is a single-goroutine macrotask queue backed by the goja_nodejs
// event loop.
type Loop struct {
	loop *nodeloop.EventLoop

	mu  sync.Mutex
	err error
}

// New creates an idle loop.
func New() *Loop {
	return &Loop{loop: nodeloop.NewEventLoop(nodeloop.EnableConsole(false))}
}

// Submit queues task for a later turn.
func (l *Loop) Submit(task func()) {
	if task == nil {
		return
	}
	// A registered callback keeps the loop alive until the task has run.
	l.loop.RegisterCallback()(func() { l.runTask(task) })
}

// Defer queues fn for the next turn. Callers on the loop use it to hand a
// result to a continuation without invoking it inline.
func (l *Loop) Defer(fn func()) {
	l.Submit(fn)
}

// Go runs work on a new goroutine and queues the continuation it returns.
// The loop holds the work as pending until the continuation is queued, so
// Run does not return while a fetch is outstanding. A nil continuation is
// allowed.
func (l *Loop) Go(ctx context.Context, work func(ctx context.Context) func()) {
	done := l.loop.RegisterCallback()

	go func() {
		var cont func()
		defer func() {
			if r := recover(); r != nil {
				p := &PanicError{Value: r, Stack: debug.Stack()}
				cont = func() { panic(p) }
			}
			done(func() {
				if cont != nil {
					l.runTask(cont)
				}
			})
		}()
		cont = work(ctx)
	}()
}

// Run executes queued tasks on the calling goroutine until the loop is idle.
func (l *Loop) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.setErr(nil)

	finished := make(chan struct{})
	defer close(finished)

	l.loop.Run(func(*goja.Runtime) {
		go func() {
			select {
			case <-ctx.Done():
				l.loop.StopNoWait()
			case <-finished:
			}
		}()
	})

	if err := l.failure(); err != nil {
		return err
	}
	return ctx.Err()
}

// runTask runs task unless an earlier task in this Run has panicked. A panic
// is recorded and stops the loop.
func (l *Loop) runTask(task func()) {
	if l.failure() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p, ok := r.(*PanicError)
			if !ok {
				p = &PanicError{Value: r, Stack: debug.Stack()}
			}
			l.setErr(p)
			l.loop.StopNoWait()
		}
	}()
	task()
}

func (l *Loop) setErr(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *Loop) failure() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
