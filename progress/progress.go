// Package progress aggregates executor lifecycle events into run-level step
// counters. A tracker is attached to a run as an executor listener; callers
// poll Snapshot or register an OnChange callback to drive displays.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/pullwise/pullwise/internal/clock"
	"github.com/pullwise/pullwise/runtime/executor"
)

// Snapshot is a read-only copy of the counters at one point in time.
type Snapshot struct {
	StartedAt time.Time
	Elapsed   time.Duration

	Started   int
	Completed int
	Failed    int
	Cohorts   int
	Done      bool
}

// String renders the snapshot as a single status line.
func (s Snapshot) String() string {
	return fmt.Sprintf("%d started, %d completed, %d failed (%.2fs)",
		s.Started, s.Completed, s.Failed, s.Elapsed.Seconds())
}

// Tracker keeps aggregated step counters for a single run. It is safe for
// concurrent use; cohort members report from their own goroutines.
type Tracker struct {
	mu        sync.Mutex
	startedAt time.Time
	started   int
	completed int
	failed    int
	cohorts   int
	done      bool
	onChange  func(Snapshot)
}

// New creates a tracker with its clock already running.
func New() *Tracker {
	return &Tracker{startedAt: clock.Now()}
}

// Listener returns the executor listener feeding this tracker.
func (t *Tracker) Listener() executor.Listener {
	return func(event executor.Event) {
		t.apply(event)
	}
}

// OnChange registers a callback invoked with a fresh snapshot after every
// event. Only one callback is active; nil disables it.
func (t *Tracker) OnChange(callback func(Snapshot)) {
	t.mu.Lock()
	t.onChange = callback
	t.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) apply(event executor.Event) {
	t.mu.Lock()
	switch event.Kind {
	case executor.EventStepStarted:
		t.started++
	case executor.EventStepCompleted:
		t.completed++
	case executor.EventStepFailed:
		t.failed++
	case executor.EventCohortStarted:
		t.cohorts++
	case executor.EventRunCompleted:
		t.done = true
	}
	snapshot := t.snapshotLocked()
	callback := t.onChange
	t.mu.Unlock()

	// The callback runs outside the critical section so slow consumers never
	// block cohort goroutines.
	if callback != nil {
		callback(snapshot)
	}
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		StartedAt: t.startedAt,
		Elapsed:   clock.Now().Sub(t.startedAt),
		Started:   t.started,
		Completed: t.completed,
		Failed:    t.failed,
		Cohorts:   t.cohorts,
		Done:      t.done,
	}
}
