package executor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pullwise/pullwise/model/graph"
	"github.com/pullwise/pullwise/model/state"
)

// appendingNode returns a node contributing one item to a shared list after
// an optional delay, so tests can permute completion order.
func appendingNode(item string, delay time.Duration) graph.NodeFunc {
	return func(context.Context, state.State) (state.Delta, error) {
		if delay > 0 {
			time.Sleep(delay)
		}
		return state.Delta{"items": []interface{}{item}}, nil
	}
}

func settingNode(field string, value interface{}) graph.NodeFunc {
	return func(context.Context, state.State) (state.Delta, error) {
		return state.Delta{field: value}, nil
	}
}

func failingNode(message string) graph.NodeFunc {
	return func(context.Context, state.State) (state.Delta, error) {
		return nil, fmt.Errorf("%s", message)
	}
}

// fanOutGraph builds entry -> {a, b, c} -> sink -> terminal.
func fanOutGraph(t *testing.T, a, b, c graph.NodeFunc) *graph.Compiled {
	t.Helper()
	compiled, err := graph.New().
		AddNode("entry", settingNode("entered", true)).
		AddNode("a", a).
		AddNode("b", b).
		AddNode("c", c).
		AddNode("sink", settingNode("joined", true)).
		AddRouter("entry", func(state.State) graph.Route {
			return graph.FanOut("a", "b", "c")
		}, "a", "b", "c").
		AddEdge("a", "sink").
		AddEdge("b", "sink").
		AddEdge("c", "sink").
		AddEdge("sink", graph.Terminal).
		SetEntryPoint("entry").
		Compile()
	require.NoError(t, err)
	return compiled
}

func TestRun_SequentialHappensBefore(t *testing.T) {
	// A later step always observes every merge from every earlier step.
	compiled, err := graph.New().
		AddNode("first", settingNode("x", 1)).
		AddNode("second", func(_ context.Context, s state.State) (state.Delta, error) {
			return state.Delta{"y": s.Int("x") + 1}, nil
		}).
		AddEdge("first", "second").
		AddEdge("second", graph.Terminal).
		SetEntryPoint("first").
		Compile()
	require.NoError(t, err)

	final, err := New(nil).Run(context.Background(), compiled, state.State{})
	require.NoError(t, err)
	assert.Equal(t, 1, final.Int("x"))
	assert.Equal(t, 2, final.Int("y"))
}

func TestRun_FanOutMergesAllBranches(t *testing.T) {
	// Completion order is scrambled via delays; the merged list must contain
	// all three items, in lexicographic node order.
	reducers := state.NewReducers().Register("items", state.Append)
	compiled := fanOutGraph(t,
		appendingNode("from-a", 30*time.Millisecond),
		appendingNode("from-b", 0),
		appendingNode("from-c", 10*time.Millisecond),
	)

	final, err := New(reducers).Run(context.Background(), compiled, state.State{})
	require.NoError(t, err)
	assert.EqualValues(t, []interface{}{"from-a", "from-b", "from-c"}, final.List("items"))
	assert.True(t, final.Bool("joined"))
}

func TestRun_SingleBranchFailureIsIsolated(t *testing.T) {
	// A, B, C with B failing "boom": A and C updates survive, exactly one
	// error is recorded, the run does not abort.
	reducers := state.NewReducers().Register("items", state.Append)
	compiled := fanOutGraph(t,
		appendingNode("from-a", 0),
		failingNode("boom"),
		appendingNode("from-c", 0),
	)

	final, err := New(reducers).Run(context.Background(), compiled, state.State{})
	require.NoError(t, err)
	assert.EqualValues(t, []interface{}{"from-a", "from-c"}, final.List("items"))

	errorList := final.List(state.KeyErrors)
	require.Len(t, errorList, 1)
	branchErr, ok := errorList[0].(BranchError)
	require.True(t, ok)
	assert.Equal(t, "b", branchErr.Node)
	assert.Equal(t, "boom", branchErr.Message)
	assert.True(t, final.Bool("joined"), "cohort failure must not block the sink")
}

func TestRun_CohortWideFailureShortCircuits(t *testing.T) {
	compiled := fanOutGraph(t,
		failingNode("a down"),
		failingNode("b down"),
		failingNode("c down"),
	)

	final, err := New(nil).Run(context.Background(), compiled, state.State{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
	assert.Len(t, final.List(state.KeyErrors), 3)
	assert.False(t, final.Bool("joined"), "error terminal must skip the sink")
}

func TestRun_SequentialFailureShortCircuits(t *testing.T) {
	compiled, err := graph.New().
		AddNode("only", failingNode("down")).
		AddEdge("only", graph.Terminal).
		SetEntryPoint("only").
		Compile()
	require.NoError(t, err)

	final, runErr := New(nil).Run(context.Background(), compiled, state.State{})
	require.Error(t, runErr)
	assert.Len(t, final.List(state.KeyErrors), 1)
}

func TestRun_PanicSurfacesAsBranchFailure(t *testing.T) {
	compiled, err := graph.New().
		AddNode("bad", func(context.Context, state.State) (state.Delta, error) {
			panic("unexpected nil")
		}).
		AddEdge("bad", graph.Terminal).
		SetEntryPoint("bad").
		Compile()
	require.NoError(t, err)

	_, runErr := New(nil).Run(context.Background(), compiled, state.State{})
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "panicked")
}

func TestRun_TimeoutTransitionsToErrorTerminal(t *testing.T) {
	compiled, err := graph.New().
		AddNode("slow", func(ctx context.Context, _ state.State) (state.Delta, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return state.Delta{}, nil
			}
		}).
		AddEdge("slow", graph.Terminal).
		SetEntryPoint("slow").
		Compile()
	require.NoError(t, err)

	service := New(nil, WithTimeout(20*time.Millisecond))
	_, runErr := service.Run(context.Background(), compiled, state.State{})
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "cancelled")
}

func TestRun_InitialStateIsNotMutated(t *testing.T) {
	compiled, err := graph.New().
		AddNode("writer", settingNode("written", true)).
		AddEdge("writer", graph.Terminal).
		SetEntryPoint("writer").
		Compile()
	require.NoError(t, err)

	initial := state.State{"seed": "value"}
	final, runErr := New(nil).Run(context.Background(), compiled, initial)
	require.NoError(t, runErr)
	assert.True(t, final.Bool("written"))
	assert.False(t, initial.Has("written"), "caller state must stay untouched")
}

func TestRun_ListenerObservesLifecycle(t *testing.T) {
	var kinds []EventKind
	listener := func(event Event) { kinds = append(kinds, event.Kind) }

	compiled, err := graph.New().
		AddNode("only", settingNode("done", true)).
		AddEdge("only", graph.Terminal).
		SetEntryPoint("only").
		Compile()
	require.NoError(t, err)

	_, runErr := New(nil, WithListener(listener)).Run(context.Background(), compiled, state.State{})
	require.NoError(t, runErr)
	assert.Equal(t, []EventKind{EventStepStarted, EventStepCompleted, EventRunCompleted}, kinds)
}

func TestRun_MaxStepsGuard(t *testing.T) {
	// Routers are opaque, so a slow chain of hops could outlive any sensible
	// run; the step bound converts that into an error.
	compiled, err := graph.New().
		AddNode("ping", settingNode("ping", true)).
		AddNode("pong", settingNode("pong", true)).
		AddRouter("ping", func(state.State) graph.Route {
			return graph.RouteTo("pong")
		}, "pong").
		AddEdge("pong", graph.Terminal).
		SetEntryPoint("ping").
		Compile()
	require.NoError(t, err)

	_, runErr := New(nil, WithMaxSteps(1)).Run(context.Background(), compiled, state.State{})
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "routing steps")
}
