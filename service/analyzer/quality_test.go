package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityAnalyzer_Analyze(t *testing.T) {
	content := strings.Join([]string{
		`func process(input string) string {`,
		`	// TODO: handle the multi-byte case`,
		`	_ = err`,
		`	return input + "` + strings.Repeat("x", 130) + `"`,
		`}`,
	}, "\n")

	result := NewQualityAnalyzer().Analyze(File{Name: "process.go", Content: content})

	assert.Len(t, result.Findings, 3)
	assert.Equal(t, 9.25, result.Score)

	messages := make([]string, 0, len(result.Findings))
	for _, finding := range result.Findings {
		messages = append(messages, finding.Message)
	}
	assert.Contains(t, messages, "unresolved TODO/FIXME marker")
	assert.Contains(t, messages, "discarded error value")
	assert.Contains(t, messages, "line exceeds maximum length")
}

func TestQualityAnalyzer_LongFunction(t *testing.T) {
	lines := []string{`func sprawling() {`}
	for i := 0; i < 70; i++ {
		lines = append(lines, `	work()`)
	}
	lines = append(lines, `}`)

	result := NewQualityAnalyzer().Analyze(File{Name: "sprawl.go", Content: strings.Join(lines, "\n")})
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, "function body too long", result.Findings[0].Message)
	assert.Equal(t, 1, result.Findings[0].Line)
}

func TestQualityAnalyzer_CleanFile(t *testing.T) {
	content := strings.Join([]string{
		`func clamp(value, low, high int) int {`,
		`	if value < low {`,
		`		return low`,
		`	}`,
		`	if value > high {`,
		`		return high`,
		`	}`,
		`	return value`,
		`}`,
	}, "\n")

	result := NewQualityAnalyzer().Analyze(File{Name: "clamp.go", Content: content})
	assert.Empty(t, result.Findings)
	assert.Equal(t, 10.0, result.Score)
}

func TestQualityAnalyzer_PythonDeclarations(t *testing.T) {
	lines := []string{`def long_task():`}
	for i := 0; i < 65; i++ {
		lines = append(lines, `    step()`)
	}

	result := NewQualityAnalyzer().Analyze(File{Name: "task.py", Content: strings.Join(lines, "\n")})
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, "function body too long", result.Findings[0].Message)
}
