package analyzer

import (
	"regexp"
	"strings"
)

type securityPattern struct {
	expr     *regexp.Regexp
	severity Severity
	message  string
}

var securityPatterns = []securityPattern{
	{regexp.MustCompile(`(?i)eval\s*\(`), SeverityHigh, "use of eval - code injection risk"},
	{regexp.MustCompile(`(?i)exec\s*\(`), SeverityHigh, "dynamic code execution risk"},
	{regexp.MustCompile(`(?i)os\.system\s*\(`), SeverityHigh, "potential command injection"},
	{regexp.MustCompile(`(?i)subprocess.*shell\s*=\s*True`), SeverityHigh, "shell injection vulnerability"},
	{regexp.MustCompile(`(?i)password\s*[:=]{1,2}\s*["'][^"']+["']`), SeverityHigh, "hardcoded password"},
	{regexp.MustCompile(`(?i)api_?key\s*[:=]{1,2}\s*["'][^"']+["']`), SeverityHigh, "hardcoded API key"},
	{regexp.MustCompile(`(?i)token\s*[:=]{1,2}\s*["'][^"']+["']`), SeverityHigh, "hardcoded token"},
	{regexp.MustCompile(`(?i)secret\s*[:=]{1,2}\s*["'][^"']+["']`), SeverityHigh, "hardcoded secret"},
	{regexp.MustCompile(`\.execute\s*\(["'][^"']*%["']`), SeverityHigh, "SQL injection vulnerability"},
	{regexp.MustCompile(`(?i)pickle\.loads?\s*\(`), SeverityMedium, "unsafe deserialization"},
	{regexp.MustCompile(`(?i)yaml\.load\s*\(`), SeverityMedium, "unsafe YAML loading"},
	{regexp.MustCompile(`(?i)verify\s*=\s*False`), SeverityMedium, "TLS verification disabled"},
	{regexp.MustCompile(`InsecureSkipVerify\s*:\s*true`), SeverityMedium, "TLS verification disabled"},
	{regexp.MustCompile(`(?i)(md5|sha1)\.(new|sum)`), SeverityLow, "weak hash algorithm"},
	{regexp.MustCompile(`math/rand`), SeverityLow, "non-cryptographic randomness"},
}

// SecurityAnalyzer detects vulnerability patterns in source text.
type SecurityAnalyzer struct{}

// NewSecurityAnalyzer creates a pattern-based security scanner.
func NewSecurityAnalyzer() *SecurityAnalyzer {
	return &SecurityAnalyzer{}
}

// Analyze scans the file and returns a severity-weighted score out of 10.
// Each HIGH finding costs 2.0 points, MEDIUM 1.0 and LOW 0.5; the score never
// drops below zero.
func (a *SecurityAnalyzer) Analyze(file File) SecurityResult {
	result := SecurityResult{
		File:           file.Name,
		Score:          10.0,
		SeverityCounts: map[Severity]int{},
	}
	for _, pattern := range securityPatterns {
		for _, loc := range pattern.expr.FindAllStringIndex(file.Content, -1) {
			line := 1 + strings.Count(file.Content[:loc[0]], "\n")
			result.Findings = append(result.Findings, Finding{
				File:     file.Name,
				Line:     line,
				Severity: pattern.severity,
				Message:  pattern.message,
				Snippet:  file.Content[loc[0]:loc[1]],
			})
			result.SeverityCounts[pattern.severity]++
			switch pattern.severity {
			case SeverityHigh:
				result.Score -= 2.0
			case SeverityMedium:
				result.Score -= 1.0
			default:
				result.Score -= 0.5
			}
		}
	}
	if result.Score < 0 {
		result.Score = 0
	}
	return result
}
