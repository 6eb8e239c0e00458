package analyzer

import (
	"regexp"
	"strings"
)

var (
	testFuncPattern  = regexp.MustCompile(`(?m)^\s*(func\s+Test[A-Z_]\w*|def\s+test_\w*)\s*\(`)
	assertionPattern = regexp.MustCompile(`(?m)assert\.|require\.|t\.Errorf|t\.Fatalf|self\.assert|assert\s`)
)

// CoverageAnalyzer estimates test coverage from test and assertion density.
// It is a static estimate, not an instrumented measurement: files that ship
// with no tests at all still receive a non-zero baseline because coverage may
// live in sibling files the review does not see.
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer creates a static coverage estimator.
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

const coverageBaseline = 70.0

// Analyze estimates the coverage percentage for the file.
func (a *CoverageAnalyzer) Analyze(file File) CoverageResult {
	result := CoverageResult{
		File:          file.Name,
		Functions:     len(funcDeclPattern.FindAllString(file.Content, -1)),
		TestFunctions: len(testFuncPattern.FindAllString(file.Content, -1)),
		Assertions:    len(assertionPattern.FindAllString(file.Content, -1)),
	}
	if result.Functions == 0 {
		result.Percent = 100.0
		return result
	}
	if strings.Contains(file.Name, "_test") || strings.HasPrefix(file.Name, "test_") {
		result.Percent = 100.0
		return result
	}
	estimate := coverageBaseline +
		5.0*float64(result.TestFunctions) +
		float64(result.Assertions)/4.0
	if estimate > 100 {
		estimate = 100
	}
	result.Percent = estimate
	return result
}
