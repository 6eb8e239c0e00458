package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityAnalyzer_Analyze(t *testing.T) {
	content := strings.Join([]string{
		`db_password = "hunter2"`,
		`data = pickle.loads(raw)`,
		`digest := md5.New()`,
	}, "\n")

	result := NewSecurityAnalyzer().Analyze(File{Name: "app.py", Content: content})

	// one HIGH (2.0), one MEDIUM (1.0), one LOW (0.5)
	assert.Equal(t, 6.5, result.Score)
	assert.Len(t, result.Findings, 3)
	assert.Equal(t, 1, result.SeverityCounts[SeverityHigh])
	assert.Equal(t, 1, result.SeverityCounts[SeverityMedium])
	assert.Equal(t, 1, result.SeverityCounts[SeverityLow])

	assert.Equal(t, 1, result.Findings[0].Line)
	assert.Equal(t, "hardcoded password", result.Findings[0].Message)
	assert.Equal(t, "app.py", result.Findings[0].File)
}

func TestSecurityAnalyzer_ScoreNeverNegative(t *testing.T) {
	lines := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		lines = append(lines, `eval(user_input)`)
	}
	result := NewSecurityAnalyzer().Analyze(File{Name: "risky.py", Content: strings.Join(lines, "\n")})

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 8, result.SeverityCounts[SeverityHigh])
}

func TestSecurityAnalyzer_CleanFile(t *testing.T) {
	content := strings.Join([]string{
		`// Sum adds the values.`,
		`func Sum(values []int) int {`,
		`	total := 0`,
		`	for _, value := range values {`,
		`		total += value`,
		`	}`,
		`	return total`,
		`}`,
	}, "\n")

	result := NewSecurityAnalyzer().Analyze(File{Name: "sum.go", Content: content})
	assert.Equal(t, 10.0, result.Score)
	assert.Empty(t, result.Findings)
}

func TestSecurityAnalyzer_GoSpecificPatterns(t *testing.T) {
	content := strings.Join([]string{
		`import "math/rand"`,
		`client := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}}`,
	}, "\n")

	result := NewSecurityAnalyzer().Analyze(File{Name: "client.go", Content: content})
	assert.Equal(t, 1, result.SeverityCounts[SeverityMedium])
	assert.Equal(t, 1, result.SeverityCounts[SeverityLow])
	assert.Equal(t, 8.5, result.Score)
}
