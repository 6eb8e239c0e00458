// Package state defines the shared state record exchanged between workflow
// nodes. Exactly one logical current state exists per run; nodes never mutate
// it directly - they return a Delta which the executor merges through the
// reducer registry.
package state

// State is a mutable mapping from field name to value. Values are
// heterogeneous (string, number, boolean, list, nested map). Absence of a
// field means "not yet computed", not an error.
type State map[string]interface{}

// Delta is a sparse partial update produced by a single node invocation. It
// touches only the fields the node is responsible for and is consumed
// immediately by the merge; it is never stored.
type Delta map[string]interface{}

// KeyErrors is the reserved field accumulating per-branch failures. It always
// merges with the Append reducer so that concurrent branches never lose a
// recorded error.
const KeyErrors = "errors"

// Clone returns a shallow copy of the state. Node functions receive clones so
// that concurrent cohort members share an immutable snapshot; values are
// treated as read-only by convention.
func (s State) Clone() State {
	ret := make(State, len(s))
	for k, v := range s {
		ret[k] = v
	}
	return ret
}

// Has reports whether the field has been written.
func (s State) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// String returns the field value as string, or "" when absent or of another
// type.
func (s State) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Bool returns the field value as bool, defaulting to false.
func (s State) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Int returns the field value as int, accepting the numeric types a YAML or
// JSON round-trip may produce.
func (s State) Int(key string) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns the field value as float64, defaulting to 0.
func (s State) Float(key string) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// List returns the field value as a generic slice. Typed slices contributed
// by a single branch are normalised so callers never care whether the field
// was merged once or many times.
func (s State) List(key string) []interface{} {
	v, ok := s[key]
	if !ok {
		return nil
	}
	return asList(v)
}

// Map returns the field value as a nested record, or nil when absent.
func (s State) Map(key string) map[string]interface{} {
	v, _ := s[key].(map[string]interface{})
	return v
}
