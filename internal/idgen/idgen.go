// Package idgen wraps the UUID generator so it can be stubbed in tests.
// Callers treat identifiers as opaque strings.
package idgen

import "github.com/google/uuid"

// NewFunc produces identifiers. Override in tests for determinism.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier as string.
func New() string { return NewFunc() }
