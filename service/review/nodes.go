package review

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pullwise/pullwise/internal/clock"
	"github.com/pullwise/pullwise/model/graph"
	"github.com/pullwise/pullwise/model/state"
	"github.com/pullwise/pullwise/service/analyzer"
	"github.com/pullwise/pullwise/service/decision"
)

func timestamp() string {
	return clock.Now().Format("2006-01-02 15:04:05")
}

// filesOf extracts the changed files recorded by the detector node.
func filesOf(s state.State) []analyzer.File {
	items := s.List(keyFilesData)
	files := make([]analyzer.File, 0, len(items))
	for _, item := range items {
		if file, ok := item.(analyzer.File); ok {
			files = append(files, file)
		}
	}
	return files
}

// detectNode fetches pull-request metadata and changed files, and announces
// the review. A fetch failure fails the branch; the notification never does.
func (s *Service) detectNode(ctx context.Context, st state.State) (state.Delta, error) {
	owner, repo, number := st.String(keyRepoOwner), st.String(keyRepoName), st.Int(keyPRNumber)
	pr, err := s.fetcher.PullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("pull request lookup failed: %w", err)
	}
	files, err := s.fetcher.ChangedFiles(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("changed files lookup failed: %w", err)
	}
	s.logger.Info("pull request detected",
		zap.String("title", pr.Title), zap.Int("files", len(files)))

	delta := state.Delta{
		keyPRDetails: pr,
		keyFilesData: files,
		keyUpdatedAt: timestamp(),
	}
	if s.notifier != nil && len(files) > 0 {
		subject := fmt.Sprintf("Review started: %s/%s#%d", owner, repo, number)
		body := fmt.Sprintf("Reviewing %q by %s (%d files).", pr.Title, pr.Author, len(files))
		if err := s.notifier.Send(subject, body); err == nil {
			delta[keyNotifications] = []interface{}{"review_started"}
		}
	}
	return delta, nil
}

// routeAfterDetection launches the full analysis cohort, or ends the run when
// there is nothing to review.
func (s *Service) routeAfterDetection(st state.State) graph.Route {
	if len(filesOf(st)) == 0 {
		s.logger.Warn("no reviewable files in pull request")
		return graph.End()
	}
	return graph.FanOut(nodeSecurity, nodeQuality, nodeCoverage, nodeAIReview, nodeDocumentation)
}

func (s *Service) securityNode(_ context.Context, st state.State) (state.Delta, error) {
	files := filesOf(st)
	results := make([]analyzer.SecurityResult, 0, len(files))
	for _, file := range files {
		results = append(results, s.security.Analyze(file))
	}
	return state.Delta{
		keySecurityResults:   results,
		keyAnalysesCompleted: []interface{}{nodeSecurity},
	}, nil
}

func (s *Service) qualityNode(_ context.Context, st state.State) (state.Delta, error) {
	files := filesOf(st)
	results := make([]analyzer.QualityResult, 0, len(files))
	for _, file := range files {
		results = append(results, s.quality.Analyze(file))
	}
	return state.Delta{
		keyQualityResults:    results,
		keyAnalysesCompleted: []interface{}{nodeQuality},
	}, nil
}

func (s *Service) coverageNode(_ context.Context, st state.State) (state.Delta, error) {
	files := filesOf(st)
	results := make([]analyzer.CoverageResult, 0, len(files))
	for _, file := range files {
		results = append(results, s.coverage.Analyze(file))
	}
	return state.Delta{
		keyCoverageResults:   results,
		keyAnalysesCompleted: []interface{}{nodeCoverage},
	}, nil
}

func (s *Service) documentationNode(_ context.Context, st state.State) (state.Delta, error) {
	files := filesOf(st)
	results := make([]analyzer.DocResult, 0, len(files))
	for _, file := range files {
		results = append(results, s.docs.Analyze(file))
	}
	return state.Delta{
		keyDocResults:        results,
		keyAnalysesCompleted: []interface{}{nodeDocumentation},
	}, nil
}

// aiReviewNode reviews every file through the LLM. Per-file failures are
// tolerated while at least one review succeeds; without a configured reviewer
// the whole branch fails and is recorded in the error list.
func (s *Service) aiReviewNode(ctx context.Context, st state.State) (state.Delta, error) {
	if s.reviewer == nil {
		return nil, fmt.Errorf("ai reviewer not configured")
	}
	files := filesOf(st)
	reviews := make([]analyzer.AIReview, 0, len(files))
	var errs []error
	for _, file := range files {
		review, err := s.reviewer.Review(ctx, file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reviews = append(reviews, review)
	}
	if len(reviews) == 0 && len(errs) > 0 {
		return nil, multierr.Combine(errs...)
	}
	return state.Delta{
		keyAIReviews:         reviews,
		keyAnalysesCompleted: []interface{}{nodeAIReview},
	}, nil
}

// coordinatorNode aggregates whatever the cohort produced into a summary.
// Analyses that failed are simply absent; the run proceeds with partial
// results.
func (s *Service) coordinatorNode(_ context.Context, st state.State) (state.Delta, error) {
	completed := make([]string, 0, 5)
	for _, item := range st.List(keyAnalysesCompleted) {
		if name, ok := item.(string); ok {
			completed = append(completed, name)
		}
	}
	summary := map[string]interface{}{
		"total_files":        len(filesOf(st)),
		"analyses_completed": completed,
	}
	s.logger.Info("coordination complete",
		zap.Int("files", len(filesOf(st))), zap.Strings("completed", completed))
	return state.Delta{
		keyCoordinationSummary: summary,
		keyUpdatedAt:           timestamp(),
	}, nil
}

func (s *Service) routeAfterCoordination(st state.State) graph.Route {
	return graph.RouteTo(nodeDecision)
}

// decisionNode applies the threshold policy to the accumulated metrics.
func (s *Service) decisionNode(_ context.Context, st state.State) (state.Delta, error) {
	metrics := metricsFromState(st)
	result := s.decision.Evaluate(metrics)
	return state.Delta{
		keyDecision:          result,
		keyHasCriticalIssues: result.RequiresAttention,
		keyCriticalReason:    result.Reason,
		keyDecisionMetrics:   metrics,
		keyUpdatedAt:         timestamp(),
	}, nil
}

// metricsFromState averages each analysis's per-file scores. An analysis that
// never ran leaves its metric at zero, which conservatively fails its
// threshold.
func metricsFromState(st state.State) decision.Metrics {
	var metrics decision.Metrics

	var securityTotal float64
	securityResults := st.List(keySecurityResults)
	for _, item := range securityResults {
		if result, ok := item.(analyzer.SecurityResult); ok {
			securityTotal += result.Score
			metrics.HighSeverityFindings += result.SeverityCounts[analyzer.SeverityHigh]
		}
	}
	if n := len(securityResults); n > 0 {
		metrics.SecurityScore = securityTotal / float64(n)
	}

	var qualityTotal float64
	qualityResults := st.List(keyQualityResults)
	for _, item := range qualityResults {
		if result, ok := item.(analyzer.QualityResult); ok {
			qualityTotal += result.Score
		}
	}
	if n := len(qualityResults); n > 0 {
		metrics.QualityScore = qualityTotal / float64(n)
	}

	var coverageTotal float64
	coverageResults := st.List(keyCoverageResults)
	for _, item := range coverageResults {
		if result, ok := item.(analyzer.CoverageResult); ok {
			coverageTotal += result.Percent
		}
	}
	if n := len(coverageResults); n > 0 {
		metrics.Coverage = coverageTotal / float64(n)
	}

	var confidenceTotal float64
	aiReviews := st.List(keyAIReviews)
	for _, item := range aiReviews {
		if review, ok := item.(analyzer.AIReview); ok {
			confidenceTotal += review.OverallScore
		}
	}
	if n := len(aiReviews); n > 0 {
		metrics.Confidence = confidenceTotal / float64(n)
	}

	var docTotal float64
	docResults := st.List(keyDocResults)
	for _, item := range docResults {
		if result, ok := item.(analyzer.DocResult); ok {
			docTotal += result.Percent
		}
	}
	if n := len(docResults); n > 0 {
		metrics.Documentation = docTotal / float64(n)
	}
	return metrics
}
