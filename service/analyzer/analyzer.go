// Package analyzer provides the per-file scorers the review workflow fans out
// to: security, quality, coverage, documentation and an LLM-backed reviewer.
// Each scorer is a stateless unit of work over file content; the engine
// treats them as opaque.
package analyzer

// Severity classifies a finding.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// File is one changed file under review.
type File struct {
	Name       string `json:"name"`
	Content    string `json:"content"`
	Patch      string `json:"patch,omitempty"`
	AddedLines int    `json:"added_lines,omitempty"`
}

// Finding is a single issue located in a file.
type Finding struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Snippet  string   `json:"snippet,omitempty"`
}

// SecurityResult scores one file for vulnerability patterns.
type SecurityResult struct {
	File           string           `json:"file"`
	Score          float64          `json:"score"`
	Findings       []Finding        `json:"findings"`
	SeverityCounts map[Severity]int `json:"severity_counts"`
}

// QualityResult scores one file with lint-style heuristics.
type QualityResult struct {
	File     string    `json:"file"`
	Score    float64   `json:"score"`
	Findings []Finding `json:"findings"`
}

// CoverageResult estimates test coverage for one file.
type CoverageResult struct {
	File          string  `json:"file"`
	Percent       float64 `json:"percent"`
	Functions     int     `json:"functions"`
	TestFunctions int     `json:"test_functions"`
	Assertions    int     `json:"assertions"`
}

// DocResult measures documentation coverage for one file.
type DocResult struct {
	File       string   `json:"file"`
	Percent    float64  `json:"percent"`
	Documented int      `json:"documented"`
	Total      int      `json:"total"`
	Missing    []string `json:"missing,omitempty"`
}

// AIReview is the LLM reviewer's verdict for one file. OverallScore is a
// confidence value in [0,1].
type AIReview struct {
	File         string   `json:"file"`
	OverallScore float64  `json:"overall_score"`
	Summary      string   `json:"summary"`
	Issues       []string `json:"issues,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}
