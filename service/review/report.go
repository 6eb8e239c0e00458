package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/pullwise/pullwise/model/state"
	"github.com/pullwise/pullwise/runtime/executor"
	"github.com/pullwise/pullwise/service/analyzer"
	"github.com/pullwise/pullwise/service/decision"
	"github.com/pullwise/pullwise/service/github"
)

// Report is the final, caller-facing aggregation of one review run.
type Report struct {
	Decision         decision.Outcome `json:"decision"`
	Recommendation   string           `json:"recommendation"`
	Priority         string           `json:"priority"`
	Metrics          decision.Metrics `json:"metrics"`
	KeyFindings      []string         `json:"key_findings"`
	ActionItems      []string         `json:"action_items"`
	ApprovalCriteria []string         `json:"approval_criteria"`
	FailedAnalyses   []string         `json:"failed_analyses,omitempty"`
}

// reportNode assembles the report and sends the final notification. Delivery
// failure degrades to a warning inside the notifier.
func (s *Service) reportNode(_ context.Context, st state.State) (state.Delta, error) {
	result, _ := st[keyDecision].(decision.Result)
	metrics, _ := st[keyDecisionMetrics].(decision.Metrics)

	report := &Report{
		Decision:         result.Outcome,
		Recommendation:   strings.ToUpper(strings.ReplaceAll(string(result.Outcome), "_", " ")),
		Priority:         priorityOf(result),
		Metrics:          metrics,
		KeyFindings:      keyFindings(st, result),
		ActionItems:      actionItems(result, metrics),
		ApprovalCriteria: approvalCriteria(metrics),
		FailedAnalyses:   failedAnalyses(st),
	}

	delta := state.Delta{
		keyReport:    report,
		keyUpdatedAt: timestamp(),
	}
	if s.notifier != nil {
		pr, _ := st[keyPRDetails].(*github.PullRequest)
		subject := fmt.Sprintf("Review %s: %s/%s#%d -> %s",
			st.String(keyReviewID), st.String(keyRepoOwner), st.String(keyRepoName),
			st.Int(keyPRNumber), report.Recommendation)
		if err := s.notifier.Send(subject, reportBody(pr, report)); err == nil {
			delta[keyNotifications] = []interface{}{"final_report"}
		}
	}
	return delta, nil
}

func priorityOf(result decision.Result) string {
	if result.RequiresAttention {
		return "HIGH"
	}
	return "MEDIUM"
}

// keyFindings lists what drove the decision plus notable analysis output.
func keyFindings(st state.State, result decision.Result) []string {
	findings := []string{result.Reason}

	vulnerabilities := 0
	for _, item := range st.List(keySecurityResults) {
		if r, ok := item.(analyzer.SecurityResult); ok {
			vulnerabilities += len(r.Findings)
		}
	}
	if vulnerabilities > 0 {
		findings = append(findings, fmt.Sprintf("found %d security findings", vulnerabilities))
	}

	qualityIssues := 0
	for _, item := range st.List(keyQualityResults) {
		if r, ok := item.(analyzer.QualityResult); ok {
			qualityIssues += len(r.Findings)
		}
	}
	if qualityIssues > 0 {
		findings = append(findings, fmt.Sprintf("found %d code quality issues", qualityIssues))
	}
	return findings
}

func actionItems(result decision.Result, metrics decision.Metrics) []string {
	switch result.Outcome {
	case decision.OutcomeCriticalEscalation:
		return []string{
			"address high severity security findings before merge",
			"request a security-team review",
		}
	case decision.OutcomeHumanReview:
		return []string{
			"assign a human reviewer",
			fmt.Sprintf("raise quality score (%.2f) and coverage (%.1f%%) above policy", metrics.QualityScore, metrics.Coverage),
		}
	case decision.OutcomeDocumentationReview:
		return []string{
			fmt.Sprintf("document the undocumented declarations (%.1f%% covered)", metrics.Documentation),
		}
	default:
		return []string{"merge when CI is green"}
	}
}

func approvalCriteria(metrics decision.Metrics) []string {
	return []string{
		fmt.Sprintf("security score %.1f/10", metrics.SecurityScore),
		fmt.Sprintf("quality score %.2f/10", metrics.QualityScore),
		fmt.Sprintf("test coverage %.1f%%", metrics.Coverage),
		fmt.Sprintf("review confidence %.2f/1.0", metrics.Confidence),
		fmt.Sprintf("documentation coverage %.1f%%", metrics.Documentation),
	}
}

// failedAnalyses surfaces which branches failed, by node name, from the
// reserved error list.
func failedAnalyses(st state.State) []string {
	var failed []string
	for _, item := range st.List(state.KeyErrors) {
		if branchErr, ok := item.(executor.BranchError); ok {
			failed = append(failed, branchErr.Node)
		}
	}
	return failed
}

func reportBody(pr *github.PullRequest, report *Report) string {
	var b strings.Builder
	if pr != nil {
		fmt.Fprintf(&b, "Pull request: %q by %s\n\n", pr.Title, pr.Author)
	}
	fmt.Fprintf(&b, "Decision: %s (priority %s)\n\n", report.Recommendation, report.Priority)
	b.WriteString("Key findings:\n")
	for _, finding := range report.KeyFindings {
		fmt.Fprintf(&b, "  - %s\n", finding)
	}
	b.WriteString("\nAction items:\n")
	for _, item := range report.ActionItems {
		fmt.Fprintf(&b, "  - %s\n", item)
	}
	b.WriteString("\nMetrics:\n")
	for _, criterion := range report.ApprovalCriteria {
		fmt.Fprintf(&b, "  - %s\n", criterion)
	}
	if len(report.FailedAnalyses) > 0 {
		fmt.Fprintf(&b, "\nFailed analyses: %s\n", strings.Join(report.FailedAnalyses, ", "))
	}
	return b.String()
}
