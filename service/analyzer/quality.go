package analyzer

import (
	"regexp"
	"strings"
)

var (
	funcDeclPattern  = regexp.MustCompile(`(?m)^\s*(func\s+(\(\w+ \*?\w+\)\s*)?[A-Za-z_]\w*|def\s+[A-Za-z_]\w*)\s*\(`)
	todoPattern      = regexp.MustCompile(`(?i)//\s*(todo|fixme|hack)|#\s*(todo|fixme|hack)`)
	shadowedErrCheck = regexp.MustCompile(`_\s*=\s*err\b|_,\s*_\s*=`)
)

const (
	maxLineLength = 120
	maxFuncLines  = 60
)

// QualityAnalyzer applies lint-style heuristics to source text.
type QualityAnalyzer struct{}

// NewQualityAnalyzer creates a heuristic code-quality scorer.
func NewQualityAnalyzer() *QualityAnalyzer {
	return &QualityAnalyzer{}
}

// Analyze scores the file out of 10, deducting 0.25 per issue found.
func (a *QualityAnalyzer) Analyze(file File) QualityResult {
	result := QualityResult{File: file.Name, Score: 10.0}
	lines := strings.Split(file.Content, "\n")

	for i, line := range lines {
		if len(line) > maxLineLength {
			result.Findings = append(result.Findings, Finding{
				File: file.Name, Line: i + 1, Severity: SeverityLow,
				Message: "line exceeds maximum length",
			})
		}
		if todoPattern.MatchString(line) {
			result.Findings = append(result.Findings, Finding{
				File: file.Name, Line: i + 1, Severity: SeverityLow,
				Message: "unresolved TODO/FIXME marker",
			})
		}
		if shadowedErrCheck.MatchString(line) {
			result.Findings = append(result.Findings, Finding{
				File: file.Name, Line: i + 1, Severity: SeverityMedium,
				Message: "discarded error value",
			})
		}
	}

	for _, finding := range longFunctions(file, lines) {
		result.Findings = append(result.Findings, finding)
	}

	result.Score -= 0.25 * float64(len(result.Findings))
	if result.Score < 0 {
		result.Score = 0
	}
	return result
}

// longFunctions flags function bodies above maxFuncLines, measured from one
// declaration to the next.
func longFunctions(file File, lines []string) []Finding {
	var findings []Finding
	var declLines []int
	for i, line := range lines {
		if funcDeclPattern.MatchString(line) {
			declLines = append(declLines, i)
		}
	}
	for i, start := range declLines {
		end := len(lines)
		if i+1 < len(declLines) {
			end = declLines[i+1]
		}
		if end-start > maxFuncLines {
			findings = append(findings, Finding{
				File: file.Name, Line: start + 1, Severity: SeverityMedium,
				Message: "function body too long",
			})
		}
	}
	return findings
}
