package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReducers_Apply(t *testing.T) {
	testCases := []struct {
		description string
		registry    func() *Reducers
		target      State
		delta       Delta
		expected    State
	}{
		{
			description: "default last write wins",
			registry:    NewReducers,
			target:      State{"score": 1.0},
			delta:       Delta{"score": 2.0},
			expected:    State{"score": 2.0},
		},
		{
			description: "absent field is simply set",
			registry:    NewReducers,
			target:      State{},
			delta:       Delta{"title": "fix"},
			expected:    State{"title": "fix"},
		},
		{
			description: "registered append concatenates",
			registry: func() *Reducers {
				return NewReducers().Register("items", Append)
			},
			target:   State{"items": []interface{}{"a"}},
			delta:    Delta{"items": []interface{}{"b", "c"}},
			expected: State{"items": []interface{}{"a", "b", "c"}},
		},
		{
			description: "reserved error list appends by default",
			registry:    NewReducers,
			target:      State{KeyErrors: []interface{}{"first"}},
			delta:       Delta{KeyErrors: []interface{}{"second"}},
			expected:    State{KeyErrors: []interface{}{"first", "second"}},
		},
	}

	for _, testCase := range testCases {
		target := testCase.target.Clone()
		testCase.registry().Apply(target, testCase.delta)
		assert.EqualValues(t, testCase.expected, target, testCase.description)
	}
}

func TestReducers_ApplyEmptyDeltaIsNoOp(t *testing.T) {
	target := State{"a": 1, "b": []interface{}{"x"}}
	before := target.Clone()
	reducers := NewReducers()

	reducers.Apply(target, Delta{})
	assert.EqualValues(t, before, target)

	reducers.Apply(target, nil)
	assert.EqualValues(t, before, target)
}

func TestReducers_ReducerOnlyInvokedWhenBothSidesPresent(t *testing.T) {
	invoked := 0
	reducers := NewReducers().Register("field", func(existing, incoming interface{}) interface{} {
		invoked++
		return incoming
	})

	target := State{}
	reducers.Apply(target, Delta{"field": "v1"})
	assert.Equal(t, 0, invoked, "first write must not call the reducer")

	reducers.Apply(target, Delta{"field": "v2"})
	assert.Equal(t, 1, invoked)
	assert.Equal(t, "v2", target["field"])
}

func TestAppend_PromotesScalarsAndTypedSlices(t *testing.T) {
	merged := Append("one", []string{"two", "three"})
	assert.EqualValues(t, []interface{}{"one", "two", "three"}, merged)

	merged = Append(nil, []interface{}{"only"})
	assert.EqualValues(t, []interface{}{"only"}, merged)
}
