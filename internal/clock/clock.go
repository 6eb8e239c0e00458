// Package clock wraps the wall clock so step timings and report timestamps
// can be pinned in tests.
package clock

import "time"

// NowFunc supplies the current time. Override in tests for determinism.
var NowFunc = time.Now

// Now returns the current time via NowFunc.
func Now() time.Time { return NowFunc() }
