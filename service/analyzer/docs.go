package analyzer

import (
	"regexp"
	"strings"
)

var (
	typeDeclPattern = regexp.MustCompile(`(?m)^\s*(type\s+[A-Z]\w*\s|class\s+[A-Za-z_]\w*)`)
	docstringOpen   = regexp.MustCompile(`^\s*("""|''')`)
)

// DocAnalyzer measures documentation coverage: the share of declared
// functions and types carrying a doc comment (or docstring).
type DocAnalyzer struct{}

// NewDocAnalyzer creates a documentation-coverage scorer.
func NewDocAnalyzer() *DocAnalyzer {
	return &DocAnalyzer{}
}

// Analyze returns the documented percentage over all documentable items in
// the file. A file with nothing to document counts as fully documented.
func (a *DocAnalyzer) Analyze(file File) DocResult {
	result := DocResult{File: file.Name}
	lines := strings.Split(file.Content, "\n")
	for i, line := range lines {
		if !funcDeclPattern.MatchString(line) && !typeDeclPattern.MatchString(line) {
			continue
		}
		result.Total++
		if isDocumented(lines, i) {
			result.Documented++
			continue
		}
		result.Missing = append(result.Missing, strings.TrimSpace(line))
	}
	if result.Total == 0 {
		result.Percent = 100.0
		return result
	}
	result.Percent = 100.0 * float64(result.Documented) / float64(result.Total)
	return result
}

// isDocumented accepts either a comment line directly above the declaration
// (Go style) or a docstring directly below it (Python style).
func isDocumented(lines []string, decl int) bool {
	if decl > 0 {
		prev := strings.TrimSpace(lines[decl-1])
		if strings.HasPrefix(prev, "//") || strings.HasPrefix(prev, "#") {
			return true
		}
	}
	for next := decl + 1; next < len(lines) && next <= decl+2; next++ {
		if docstringOpen.MatchString(lines[next]) {
			return true
		}
	}
	return false
}
