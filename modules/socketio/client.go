package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/eventloop"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ReplyCallback receives an error message (empty on success) and the first
// argument of the reply event.
type ReplyCallback func(errMsg string, reply any)

type client struct {
	ctx            context.Context
	io             *socket.Socket
	loop           *eventloop.Loop
	defaultTimeout time.Duration
	replies        replies
}

type opResult struct {
	value any
	err   error
}

func (c *client) exports() map[string]any {
	return map[string]any{
		"id":      string(c.io.Id()),
		"emit":    c.emit,
		"request": c.request,
		"close":   c.close,
	}
}

func (c *client) emit(event string, data any) {
	c.io.Emit(event, data)
}

func (c *client) close() {
	ctxlog.FromContext(c.ctx).Info("Closing socket.io client", "sid", c.io.Id())
	c.io.Disconnect()
}

// request emits emitEvent with data and reports the first onEvent that
// arrives within timeoutMs. A zero timeout uses the client default.
func (c *client) request(emitEvent, onEvent string, data any, timeoutMs int64, cb ReplyCallback) {
	timeout := c.defaultTimeout
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}

	work := func(ctx context.Context) func() {
		res := c.roundTrip(ctx, emitEvent, onEvent, data, timeout)
		return func() {
			if res.err != nil {
				cb(res.err.Error(), nil)
				return
			}
			cb("", res.value)
		}
	}

	if c.loop == nil {
		work(c.ctx)()
		return
	}
	c.loop.Go(c.ctx, work)
}

func (c *client) roundTrip(ctx context.Context, emitEvent, onEvent string, data any, timeout time.Duration) opResult {
	logger := ctxlog.FromContext(ctx).With("module", ModuleID, "sid", c.io.Id())

	if !c.io.Connected() {
		return opResult{err: fmt.Errorf("socket.io client is not connected")}
	}
	logger.Info("Executing request", "emitEvent", emitEvent, "onEvent", onEvent)

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done, withdraw, first := c.replies.await(onEvent)
	defer withdraw()
	if first {
		c.io.On(types.EventName(onEvent), func(args ...any) {
			logger.Debug("EVENT HANDLER: reply event received", "event", onEvent)
			c.replies.deliver(onEvent, args)
		})
	}

	jsonData, _ := json.Marshal(data)
	logger.Debug("Emitting event", "event", emitEvent, "data", string(jsonData))
	c.io.Emit(emitEvent, data)

	select {
	case <-opCtx.Done():
		return opResult{err: fmt.Errorf("timed out after %v waiting for event '%s'", timeout, onEvent)}
	case res := <-done:
		logger.Info("Successfully received response event", "event", onEvent)
		return res
	}
}

// replies hands reply events to the requests waiting for them, oldest
// first. The socket carries one listener per event name; a request that
// times out withdraws its waiter so the next reply goes to the next request.
type replies struct {
	mu      sync.Mutex
	waiting map[string][]chan opResult
}

// await queues a waiter for event. first reports whether event had no
// waiter queue yet, in which case the caller subscribes the socket to it.
func (r *replies) await(event string) (ch <-chan opResult, withdraw func(), first bool) {
	c := make(chan opResult, 1)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiting == nil {
		r.waiting = make(map[string][]chan opResult)
	}
	queue, seen := r.waiting[event]
	r.waiting[event] = append(queue, c)

	withdraw = func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		queue := r.waiting[event]
		for i, w := range queue {
			if w == c {
				r.waiting[event] = append(queue[:i:i], queue[i+1:]...)
				return
			}
		}
	}
	return c, withdraw, !seen
}

// deliver completes the oldest waiter for event. Replies nobody waits for
// are dropped.
func (r *replies) deliver(event string, args []any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.waiting[event]
	if len(queue) == 0 {
		return false
	}
	r.waiting[event] = queue[1:]

	var res opResult
	if len(args) > 0 {
		res.value = args[0]
	}
	queue[0] <- res
	return true
}
