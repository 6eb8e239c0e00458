package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Accessors(t *testing.T) {
	s := State{
		"name":    "pullwise",
		"number":  42,
		"big":     int64(7),
		"score":   9.5,
		"flag":    true,
		"items":   []interface{}{"a", "b"},
		"typed":   []string{"x", "y"},
		"details": map[string]interface{}{"k": "v"},
	}

	assert.Equal(t, "pullwise", s.String("name"))
	assert.Equal(t, "", s.String("absent"))
	assert.Equal(t, 42, s.Int("number"))
	assert.Equal(t, 7, s.Int("big"))
	assert.Equal(t, 9.5, s.Float("score"))
	assert.Equal(t, 42.0, s.Float("number"))
	assert.True(t, s.Bool("flag"))
	assert.False(t, s.Bool("absent"))
	assert.Len(t, s.List("items"), 2)
	assert.EqualValues(t, []interface{}{"x", "y"}, s.List("typed"))
	assert.Nil(t, s.List("absent"))
	assert.Equal(t, "v", s.Map("details")["k"])
	assert.True(t, s.Has("name"))
	assert.False(t, s.Has("absent"))
}

func TestState_CloneIsIndependent(t *testing.T) {
	original := State{"a": 1}
	clone := original.Clone()
	clone["a"] = 2
	clone["b"] = 3

	assert.Equal(t, 1, original.Int("a"))
	assert.False(t, original.Has("b"))
}
