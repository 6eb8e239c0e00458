package executor

import "time"

// EventKind identifies a lifecycle event emitted by the run loop.
type EventKind string

const (
	EventStepStarted   EventKind = "stepStarted"
	EventStepCompleted EventKind = "stepCompleted"
	EventStepFailed    EventKind = "stepFailed"
	EventCohortStarted EventKind = "cohortStarted"
	EventCohortJoined  EventKind = "cohortJoined"
	EventRunCompleted  EventKind = "runCompleted"
)

// Event describes a single lifecycle occurrence. Cohort is populated for the
// cohort events, Node for the step events.
type Event struct {
	Kind    EventKind
	Node    string
	Cohort  []string
	Err     error
	Elapsed time.Duration
}

// Listener observes executor lifecycle events. Implementations can log,
// collect metrics or feed progress displays; they run on the emitting
// goroutine and should return quickly.
type Listener func(Event)
