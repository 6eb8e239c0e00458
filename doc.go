// Package pullwise is an in-process workflow engine for automated pull
// request review. A fixed graph of named nodes fans five analyses out
// concurrently, merges their partial results back into a shared state
// through per-field reducers, applies a threshold-based decision policy and
// publishes a report.
//
// The engine itself (model/graph, model/state, runtime/executor) knows
// nothing about code review: nodes are opaque functions from a state
// snapshot to a partial update, and routing is data-driven. The review
// assembly lives in service/review with its collaborators under
// service/github, service/analyzer and service/mail.
package pullwise
