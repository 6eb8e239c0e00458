package review

import (
	"github.com/pullwise/pullwise/service/analyzer"
	"github.com/pullwise/pullwise/service/github"
)

// Demo sample: one risky, undocumented handler and one clean, documented
// helper with tests, so a demo run exercises every analyzer and usually ends
// in an escalation.

const demoRiskyFile = `import os
import pickle

password = "hunter2-prod"

def run(command):
    os.system(command)

def load(blob):
    return pickle.loads(blob)

def score(payload):
    return eval(payload["expression"])
`

const demoCleanFile = `// Package mathutil provides small numeric helpers.
package mathutil

// Clamp bounds v to the [lo, hi] interval.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mean returns the arithmetic mean of values, or 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// TestClamp exercises both bounds.
func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(0.5, 1, 2))
	assert.Equal(t, 2.0, Clamp(3.5, 1, 2))
	assert.Equal(t, 1.5, Clamp(1.5, 1, 2))
}
`

// DemoFetcher returns a fetcher preloaded with the bundled sample change set.
func DemoFetcher() *StaticFetcher {
	return &StaticFetcher{
		PR: &github.PullRequest{
			Number:     42,
			Title:      "Add payload scoring endpoint",
			Author:     "sample-dev",
			HeadBranch: "feature/scoring",
			BaseBranch: "main",
			State:      "open",
		},
		Files: []analyzer.File{
			{Name: "scoring/handler.py", Content: demoRiskyFile, AddedLines: 14},
			{Name: "mathutil/clamp.go", Content: demoCleanFile, AddedLines: 32},
		},
	}
}
