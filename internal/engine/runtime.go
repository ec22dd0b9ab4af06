package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/eventloop"
	"github.com/vk/amdgo/internal/inmemorystore"
	"github.com/vk/amdgo/internal/moduleid"
	"github.com/vk/amdgo/internal/record"
	"github.com/vk/amdgo/internal/recordstore"
	"github.com/vk/amdgo/internal/source"
)

// Options are the user-tunable settings of a Runtime.
type Options struct {
	// BasePath is prepended to non-literal ids to form a locator.
	BasePath string
	// Suffix is appended to non-literal ids to form a locator.
	Suffix string
	// OnFetch is called with the request handle right before a fetch
	// starts. Setting req.Reject fails the module without fetching.
	OnFetch func(req *source.Request)
	// FetchTimeout bounds a single fetch. Zero means no bound.
	FetchTimeout time.Duration
	// Lenient logs internal protocol violations instead of panicking.
	Lenient bool
}

// Unit is a source being evaluated on behalf of a module id.
type Unit struct {
	ID      string
	Locator string
}

// Evaluator executes a fetched source. Anonymous defines issued while
// Evaluate runs are attributed to unit.ID.
type Evaluator interface {
	Evaluate(ctx context.Context, unit Unit, src []byte) error
}

// Observer receives lifecycle notifications. It is called on the loop
// goroutine and must not block. from is Unregistered for a first record.
type Observer interface {
	Transition(id string, from, to record.State)
	Fetched(id string, elapsed time.Duration, err error)
}

// Unregistered is the pseudo state reported for an id with no record yet.
const Unregistered record.State = -1

// Option configures the collaborators of a Runtime.
type Option func(*Runtime)

// WithStore replaces the default in-memory record store.
func WithStore(s recordstore.Store) Option {
	return func(rt *Runtime) { rt.store = s }
}

// WithLoop runs the runtime on an existing loop.
func WithLoop(l *eventloop.Loop) Option {
	return func(rt *Runtime) { rt.loop = l }
}

// WithObserver attaches an observer.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) { rt.observer = o }
}

// WithOpIDs replaces the load-operation id allocator.
func WithOpIDs(fn OpIDFunc) Option {
	return func(rt *Runtime) { rt.newOpID = fn }
}

// Runtime is one isolated module-loading instance.
type Runtime struct {
	ctx    context.Context
	logger *slog.Logger

	opts       Options
	store      recordstore.Store
	loop       *eventloop.Loop
	fetcher    source.Fetcher
	observer   Observer
	newOpID    OpIDFunc
	newExports func() any
	evaluators map[string]Evaluator

	// units is the stack of sources currently being evaluated.
	units []Unit
}

// New creates a runtime whose fetches run under ctx.
func New(ctx context.Context, fetcher source.Fetcher, opts Options, with ...Option) *Runtime {
	rt := &Runtime{
		ctx:        ctx,
		logger:     ctxlog.FromContext(ctx).With("component", "engine"),
		fetcher:    fetcher,
		newOpID:    NewOpID,
		newExports: func() any { return map[string]any{} },
		evaluators: make(map[string]Evaluator),
	}
	rt.opts = mergeOptions(Options{BasePath: moduleid.DefaultBasePath, Suffix: moduleid.DefaultSuffix}, opts)
	rt.opts.Lenient = opts.Lenient
	for _, opt := range with {
		opt(rt)
	}
	if rt.store == nil {
		rt.store = inmemorystore.New()
	}
	if rt.loop == nil {
		rt.loop = eventloop.New()
	}
	return rt
}

// Configure merges opts into the current options. Zero fields are ignored.
func (rt *Runtime) Configure(opts Options) {
	rt.opts = mergeOptions(rt.opts, opts)
	rt.logger.Debug("Runtime configured.", "base_path", rt.opts.BasePath, "suffix", rt.opts.Suffix)
}

func mergeOptions(cur, next Options) Options {
	if next.BasePath != "" {
		cur.BasePath = next.BasePath
	}
	if next.Suffix != "" {
		cur.Suffix = next.Suffix
	}
	if next.OnFetch != nil {
		cur.OnFetch = next.OnFetch
	}
	if next.FetchTimeout > 0 {
		cur.FetchTimeout = next.FetchTimeout
	}
	return cur
}

// Options returns the effective options.
func (rt *Runtime) Options() Options { return rt.opts }

// RegisterEvaluator routes sources whose locator ends in ext to ev.
// Registering an extension twice panics.
func (rt *Runtime) RegisterEvaluator(ext string, ev Evaluator) {
	if _, exists := rt.evaluators[ext]; exists {
		panic(fmt.Sprintf("evaluator for extension '%s' already registered", ext))
	}
	rt.evaluators[ext] = ev
}

// SetExportsFactory sets how the initial exports placeholder of a module
// under initialization is created.
func (rt *Runtime) SetExportsFactory(fn func() any) {
	rt.newExports = fn
}

// Loop returns the event loop the runtime runs on.
func (rt *Runtime) Loop() *eventloop.Loop { return rt.loop }

// Store returns the record store.
func (rt *Runtime) Store() recordstore.Store { return rt.store }

// Context returns the runtime's base context.
func (rt *Runtime) Context() context.Context { return rt.ctx }

// Extensions returns the registered source extensions, sorted.
func (rt *Runtime) Extensions() []string {
	return slices.Sorted(maps.Keys(rt.evaluators))
}

// CurrentUnit returns the innermost source being evaluated.
func (rt *Runtime) CurrentUnit() (Unit, bool) {
	if len(rt.units) == 0 {
		return Unit{}, false
	}
	return rt.units[len(rt.units)-1], true
}

// State returns the lifecycle state of id.
func (rt *Runtime) State(id string) (record.State, bool) {
	r, ok := rt.store.Get(id)
	if !ok {
		return 0, false
	}
	return r.State(), true
}

// set replaces the record of id and reports the transition.
func (rt *Runtime) set(id string, next record.Record) {
	prev, existed := rt.store.Get(id)
	rt.store.Set(id, next)
	from := Unregistered
	if existed {
		from = prev.State()
	}
	rt.logger.Debug("Module transition.", "module", id, "from", stateName(prev, existed), "to", next.State().String())
	if rt.observer != nil {
		rt.observer.Transition(id, from, next.State())
	}
}

func stateName(r record.Record, ok bool) string {
	if !ok {
		return "unregistered"
	}
	return r.State().String()
}

// resolve moves id to a terminal record and flushes its waiters in the
// order they were registered.
func (rt *Runtime) resolve(id string, terminal record.Record) {
	cur, ok := rt.store.Get(id)
	if !ok {
		rt.violation(id, "resolving a module that was never registered")
		return
	}
	if cur.State().IsTerminal() {
		rt.violation(id, "module resolved twice (current state: "+cur.State().String()+")")
		return
	}
	rt.set(id, terminal)
	if f, failed := terminal.(record.Failed); failed {
		rt.logger.Debug("Module failed.", "module", id, "error", f.Err)
	}
	if w, ok := cur.(record.Waiting); ok {
		for _, cb := range w.Waiters() {
			cb(id, terminal)
		}
	}
}

// violation reports an internal protocol violation. Strict runtimes panic,
// which the loop turns into a Run error.
func (rt *Runtime) violation(id, reason string) error {
	err := &ProtocolViolationError{ID: id, Reason: reason}
	if !rt.opts.Lenient {
		panic(err)
	}
	rt.logger.Warn("Protocol violation ignored.", "module", id, "reason", reason)
	return err
}

// unresolved lists the ids that are not terminal.
func (rt *Runtime) unresolved() []string {
	var out []string
	for id, st := range rt.store.Snapshot() {
		if !st.IsTerminal() {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// evaluatorFor picks the evaluator by the extension of locator, ignoring
// any query or fragment.
func (rt *Runtime) evaluatorFor(locator string) (Evaluator, string) {
	p := locator
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := ""
	if i := strings.LastIndexByte(p, '.'); i >= 0 && !strings.Contains(p[i:], "/") {
		ext = p[i:]
	}
	if ev, ok := rt.evaluators[ext]; ok {
		return ev, ext
	}
	return rt.evaluators[rt.opts.Suffix], ext
}
