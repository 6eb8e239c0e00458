// Package executor drives a compiled workflow graph: it starts at the entry
// node, advances along the routing table, launches fan-out cohorts
// concurrently, waits for the full cohort at a join barrier, merges partial
// updates through the reducer registry and stops on the terminal marker or on
// unrecoverable failure.
package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pullwise/pullwise/internal/clock"
	"github.com/pullwise/pullwise/model/graph"
	"github.com/pullwise/pullwise/model/state"
	"github.com/pullwise/pullwise/tracing"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// BranchError records a failed node invocation under the reserved error-list
// field. The node name is kept so downstream reporting can surface which
// analysis failed, not just a generic error string.
type BranchError struct {
	Node    string `json:"node"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e BranchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Node, e.Message)
}

// Service executes compiled graphs. It is the sole writer of the canonical
// state: nodes only return deltas and every merge is serialised through the
// run loop, so the state itself needs no lock.
type Service struct {
	reducers *state.Reducers
	logger   *zap.Logger
	listener Listener
	maxSteps int
	timeout  time.Duration
}

// DefaultMaxSteps bounds the number of routing iterations per run. Compile
// rejects cycles, so the bound only guards against a misbehaving router.
const DefaultMaxSteps = 100

// New creates an executor service. A nil reducer registry falls back to a
// fresh one with only the reserved error-list reducer registered.
func New(reducers *state.Reducers, options ...Option) *Service {
	if reducers == nil {
		reducers = state.NewReducers()
	}
	s := &Service{
		reducers: reducers,
		logger:   zap.NewNop(),
		maxSteps: DefaultMaxSteps,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Run executes the graph from its entry node against the initial state and
// returns the final state. The returned state may be partial when err is
// non-nil; the caller inspects the reserved error list before treating the
// run as successful.
func (s *Service) Run(ctx context.Context, g *graph.Compiled, initial state.State) (state.State, error) {
	if s.timeout > 0 {
		// A run-level timeout cancels all in-flight cohort members and
		// transitions to the error terminal.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, span := tracing.StartSpan(ctx, "executor.Run", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	st := initial.Clone()
	route := graph.RouteTo(g.Entry())
	for steps := 0; ; steps++ {
		if route.IsTerminal() {
			s.emit(Event{Kind: EventRunCompleted})
			return st, nil
		}
		if steps >= s.maxSteps {
			err = fmt.Errorf("run exceeded %d routing steps", s.maxSteps)
			return st, err
		}
		cohort := route.Targets()
		results := s.runCohort(ctx, g, cohort, st)

		failures := 0
		var branchErrs []error
		for _, result := range results {
			if result.err != nil {
				failures++
				branchErrs = append(branchErrs, result.err)
				s.reducers.Apply(st, state.Delta{
					state.KeyErrors: []interface{}{BranchError{Node: result.node, Message: result.err.Error()}},
				})
				continue
			}
			s.reducers.Apply(st, result.delta)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("run cancelled: %w", ctxErr)
			return st, err
		}
		if failures == len(results) {
			// Cohort-wide failure short-circuits to the error terminal.
			err = fmt.Errorf("cohort %v failed: %w", cohort, multierr.Combine(branchErrs...))
			return st, err
		}

		route, err = s.nextRoute(g, cohort, st)
		if err != nil {
			return st, err
		}
	}
}

type branchResult struct {
	node  string
	delta state.Delta
	err   error
}

// runCohort executes every member against the same snapshot of the state at
// cohort start, on its own goroutine when there is more than one member. A
// member's failure never cancels its siblings; the join barrier waits for all
// of them. Results come back sorted lexicographically by node name so merge
// order is reproducible regardless of completion order.
func (s *Service) runCohort(ctx context.Context, g *graph.Compiled, cohort []string, st state.State) []branchResult {
	snapshot := st.Clone()
	results := make([]branchResult, len(cohort))
	if len(cohort) == 1 {
		name := cohort[0]
		delta, err := s.runStep(ctx, g, name, snapshot)
		results[0] = branchResult{node: name, delta: delta, err: err}
		return results
	}

	s.emit(Event{Kind: EventCohortStarted, Cohort: cohort})
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("executor.cohort %v", cohort), "INTERNAL")
	var wg sync.WaitGroup
	for i, name := range cohort {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			delta, err := s.runStep(ctx, g, name, snapshot)
			results[i] = branchResult{node: name, delta: delta, err: err}
		}(i, name)
	}
	wg.Wait()
	tracing.EndSpan(span, nil)
	s.emit(Event{Kind: EventCohortJoined, Cohort: cohort})

	sort.Slice(results, func(i, j int) bool { return results[i].node < results[j].node })
	return results
}

func (s *Service) runStep(ctx context.Context, g *graph.Compiled, name string, snapshot state.State) (state.Delta, error) {
	fn, ok := g.Node(name)
	if !ok {
		return nil, fmt.Errorf("node %q not found", name)
	}
	ctx, span := tracing.StartSpan(ctx, "executor.step "+name, "INTERNAL")
	started := clock.Now()
	s.emit(Event{Kind: EventStepStarted, Node: name})
	delta, err := invoke(ctx, fn, snapshot)
	elapsed := clock.Now().Sub(started)
	tracing.EndSpan(span, err)
	if err != nil {
		s.logger.Warn("step failed", zap.String("node", name), zap.Duration("elapsed", elapsed), zap.Error(err))
		s.emit(Event{Kind: EventStepFailed, Node: name, Err: err, Elapsed: elapsed})
		return nil, err
	}
	s.logger.Debug("step completed", zap.String("node", name), zap.Duration("elapsed", elapsed))
	s.emit(Event{Kind: EventStepCompleted, Node: name, Elapsed: elapsed})
	return delta, nil
}

// invoke shields the run loop from a panicking node; the panic surfaces as a
// per-branch failure like any other error.
func invoke(ctx context.Context, fn graph.NodeFunc, snapshot state.State) (delta state.Delta, err error) {
	defer func() {
		if r := recover(); r != nil {
			delta, err = nil, fmt.Errorf("node panicked: %v", r)
		}
	}()
	return fn(ctx, snapshot)
}

// nextRoute resolves where the run advances after a cohort has fully merged.
// A single-member cohort simply follows its own routing entry. A fan-out
// cohort must converge: every member's successor is resolved and all of them
// must name the same sink (or the terminal marker) before its routing entry
// is evaluated on the next iteration.
func (s *Service) nextRoute(g *graph.Compiled, cohort []string, st state.State) (graph.Route, error) {
	if len(cohort) == 1 {
		return g.Next(cohort[0], st)
	}
	var sink string
	terminal := true
	for _, name := range cohort {
		route, err := g.Next(name, st)
		if err != nil {
			return graph.End(), err
		}
		if route.IsTerminal() {
			continue
		}
		if route.IsFanOut() {
			return graph.End(), fmt.Errorf("cohort member %q fans out before the cohort sink", name)
		}
		terminal = false
		target := route.Targets()[0]
		if sink == "" {
			sink = target
			continue
		}
		if sink != target {
			return graph.End(), fmt.Errorf("cohort members disagree on successor: %q vs %q", sink, target)
		}
	}
	if terminal {
		return graph.End(), nil
	}
	return graph.RouteTo(sink), nil
}

func (s *Service) emit(event Event) {
	if s.listener != nil {
		s.listener(event)
	}
}
