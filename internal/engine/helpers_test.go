package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/amdgo/internal/record"
	"github.com/vk/amdgo/internal/source"
)

// script is a Go stand-in for a module source.
type script func(rt *Runtime) error

// scriptEvaluator treats a fetched source as the name of a registered script.
type scriptEvaluator struct {
	rt      *Runtime
	scripts map[string]script
	units   []Unit
}

func (e *scriptEvaluator) Evaluate(_ context.Context, unit Unit, src []byte) error {
	e.units = append(e.units, unit)
	fn, ok := e.scripts[string(src)]
	if !ok {
		return fmt.Errorf("unknown script %q", src)
	}
	return fn(e.rt)
}

type harness struct {
	rt      *Runtime
	mem     *source.Memory
	scripts map[string]script
	eval    *scriptEvaluator
}

// newHarness builds a runtime whose sources live in memory. Each id in
// scripts is served from its default locator ./<id>.js.
func newHarness(t *testing.T, scripts map[string]script, opts ...Option) *harness {
	t.Helper()
	mem := source.NewMemory(nil)
	for id := range scripts {
		mem.Put("./"+id+".js", id)
	}
	rt := New(context.Background(), mem, Options{}, opts...)
	eval := &scriptEvaluator{rt: rt, scripts: scripts}
	rt.RegisterEvaluator(".js", eval)
	return &harness{rt: rt, mem: mem, scripts: scripts, eval: eval}
}

func (h *harness) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.rt.Loop().Run(ctx))
}

// outcome captures the callbacks of one RequireAll.
type outcome struct {
	calls int
	args  []any
	err   error
}

func (o *outcome) success(args ...any) {
	o.calls++
	o.args = args
}

func (o *outcome) failure(err error) {
	o.calls++
	o.err = err
}

// recordingObserver keeps every transition it sees.
type recordingObserver struct {
	transitions []string
	fetched     []string
}

func (o *recordingObserver) Transition(id string, from, to record.State) {
	fromName := "unregistered"
	if from != Unregistered {
		fromName = from.String()
	}
	o.transitions = append(o.transitions, fmt.Sprintf("%s:%s->%s", id, fromName, to))
}

func (o *recordingObserver) Fetched(id string, _ time.Duration, err error) {
	o.fetched = append(o.fetched, fmt.Sprintf("%s:%v", id, err == nil))
}

func define(id string, deps []string, f Factory) script {
	return func(rt *Runtime) error { return rt.Define(id, deps, f) }
}
