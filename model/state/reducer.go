package state

import (
	"reflect"
	"sort"
)

// Reducer merges an incoming partial value into the existing value of the
// same field and returns the merged result. Reducers are only invoked when
// both sides are present - an absent field in a delta is absent, not a no-op
// default value.
type Reducer func(existing, incoming interface{}) interface{}

// LastWrite is the default reducer: the incoming value replaces the existing
// one. Safe only for fields written by exactly one node per cohort.
func LastWrite(_, incoming interface{}) interface{} {
	return incoming
}

// Append is the canonical reducer for fields shared by concurrent cohort
// members. Both sides are treated as sequences and concatenated, preserving
// the order in which merges are applied. Scalar values are promoted to
// single-element sequences so a branch may contribute either one item or a
// batch.
func Append(existing, incoming interface{}) interface{} {
	return append(asList(existing), asList(incoming)...)
}

func asList(value interface{}) []interface{} {
	if value == nil {
		return nil
	}
	if items, ok := value.([]interface{}); ok {
		return items
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return []interface{}{value}
	}
	items := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

// Reducers maps field names to their merge function. Unregistered fields
// merge with LastWrite.
type Reducers struct {
	byField map[string]Reducer
}

// NewReducers returns a registry with the reserved error-list field
// pre-registered so that branch failures are never lost to a last-write.
func NewReducers() *Reducers {
	r := &Reducers{byField: map[string]Reducer{}}
	r.Register(KeyErrors, Append)
	return r
}

// Register binds a reducer to a field name, replacing any previous binding.
func (r *Reducers) Register(field string, reducer Reducer) *Reducers {
	r.byField[field] = reducer
	return r
}

// Lookup returns the reducer for the field, falling back to LastWrite.
func (r *Reducers) Lookup(field string) Reducer {
	if reducer, ok := r.byField[field]; ok {
		return reducer
	}
	return LastWrite
}

// Apply merges a delta into the target state. Fields are applied in
// lexicographic order so that reducer behaviour is reproducible regardless of
// map iteration order. An empty delta leaves the state unchanged.
func (r *Reducers) Apply(target State, delta Delta) {
	if len(delta) == 0 {
		return
	}
	fields := make([]string, 0, len(delta))
	for field := range delta {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		incoming := delta[field]
		if existing, ok := target[field]; ok {
			target[field] = r.Lookup(field)(existing, incoming)
			continue
		}
		target[field] = incoming
	}
}
