package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/arborlogic/arbor/tree"
)

// Handler evaluates one node against a state snapshot and returns the
// status plus the updated state. The engine resolves the node's deferred
// options before the call; opts holds the effective values for this tick.
// Handlers tick children through r.Tick, threading state strictly in child
// order, and must not retain s beyond the TickResult they return.
//
// Domain FAILURE and ERROR are first-class statuses in the TickResult; the
// error return is reserved for fatal conditions (unregistered tags,
// unresolvable options) that abort the enclosing Run call.
type Handler func(ctx context.Context, r *Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error)

// Engine evaluates compiled trees. Evaluation is single-threaded,
// synchronous and depth-first: one top-level Run call executes to
// completion on the calling goroutine, and no node — including "parallel"
// — runs children concurrently.
//
// An Engine holds no per-evaluation state and may be shared, but two
// concurrent Run calls must not share a mutable random source; inject
// separate engines (or sources) if runs overlap.
type Engine struct {
	reg    *Registry
	rand   *rand.Rand
	tracer Tracer
	log    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used by the probabilistic node types
// (selector-p, randomly, choose, choose-each). Inject a fixed source for
// deterministic tests.
func WithRand(src rand.Source) Option {
	return func(e *Engine) {
		e.rand = rand.New(src)
	}
}

// WithTracer installs a tracer observing every node dispatch.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithLogger sets the logger for evaluation debug output.
// Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an Engine dispatching against the given registry.
func New(reg *Registry, opts ...Option) *Engine {
	e := &Engine{
		reg: reg,
		rand: rand.New(rand.NewPCG(
			uint64(time.Now().UnixNano()), uint64(time.Now().UnixNano()>>32))),
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs one top-level evaluation of a compiled tree.
//
// It installs local into the working-memory region, ticks the root, then
// strips working memory from the returned state — working memory never
// escapes one Run call. The input state is not mutated; the result carries
// a new value.
func (e *Engine) Run(ctx context.Context, s tree.State, root *tree.Node, local map[string]any) (tree.TickResult, error) {
	r := &Run{
		engine: e,
		token:  uuid.NewString(),
		clock:  NewClock(),
	}
	e.log.Debug("run starting", "run", r.token, "root_tag", root.Tag, "root_id", int64(root.ID))

	res, err := r.Tick(ctx, s.WithWorking(local), root)
	res.State = res.State.WithoutWorking()
	if err != nil {
		e.log.Debug("run failed", "run", r.token, "error", err)
		return res, err
	}

	e.log.Debug("run finished", "run", r.token, "status", res.Status.String(), "ticks", r.clock.Current())
	return res, nil
}

// Run is the context of one top-level evaluation: the run token shared by
// its trace events, the logical clock sequencing them, and access to the
// engine's random source. Handlers receive it to tick children.
type Run struct {
	engine *Engine
	token  string
	clock  *Clock
}

// Token returns the run's correlation token.
func (r *Run) Token() string {
	return r.token
}

// Rand returns the random source for probabilistic node types.
func (r *Run) Rand() *rand.Rand {
	return r.engine.rand
}

// Tick dispatches one node: looks up its tag's handler, resolves deferred
// options against the current state, and invokes the handler. Ticking an
// unregistered tag is a fatal DispatchError.
func (r *Run) Tick(ctx context.Context, s tree.State, n *tree.Node) (tree.TickResult, error) {
	spec, ok := r.engine.reg.Spec(n.Tag)
	if !ok {
		err := &DispatchError{Tag: n.Tag, NodeID: n.ID}
		r.trace(TraceEvent{NodeID: n.ID, Tag: n.Tag, Status: tree.Error, Err: err.Error()})
		return tree.TickResult{Status: tree.Error, State: s}, err
	}

	opts, err := effectiveOptions(s, n)
	if err != nil {
		r.trace(TraceEvent{NodeID: n.ID, Tag: n.Tag, Status: tree.Error, Err: err.Error()})
		return tree.TickResult{Status: tree.Error, State: s}, err
	}

	res, err := spec.Handler(ctx, r, s, n, opts)
	if err != nil {
		r.trace(TraceEvent{NodeID: n.ID, Tag: n.Tag, Status: tree.Error, Err: err.Error()})
		return res, err
	}

	r.trace(TraceEvent{NodeID: n.ID, Tag: n.Tag, Status: res.Status})
	return res, nil
}

// trace stamps an event with the run token and next seq, then forwards it.
func (r *Run) trace(ev TraceEvent) {
	ev.RunToken = r.token
	ev.Seq = r.clock.Next()
	if r.engine.tracer != nil {
		r.engine.tracer.Tick(ev)
	}
	r.engine.log.Debug("tick",
		"run", ev.RunToken,
		"seq", ev.Seq,
		"node", int64(ev.NodeID),
		"tag", ev.Tag,
		"status", ev.Status.String(),
	)
}
