// Package review assembles and runs the code-review workflow: a detector node
// fans out to five concurrent analyses whose partial results merge back into
// the shared state, a coordinator aggregates them, a decision node applies
// the threshold policy and a report node publishes the verdict.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pullwise/pullwise/internal/clock"
	"github.com/pullwise/pullwise/internal/idgen"
	"github.com/pullwise/pullwise/model/graph"
	"github.com/pullwise/pullwise/model/state"
	"github.com/pullwise/pullwise/runtime/executor"
	"github.com/pullwise/pullwise/service/analyzer"
	"github.com/pullwise/pullwise/service/decision"
	"github.com/pullwise/pullwise/service/github"
)

// Fetcher supplies pull-request metadata and changed files. github.Client
// implements it; tests and the demo use a static stand-in.
type Fetcher interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	ChangedFiles(ctx context.Context, owner, repo string, number int) ([]analyzer.File, error)
}

// Notifier delivers review notifications. Failures never abort a run.
type Notifier interface {
	Send(subject, body string) error
}

// Reviewer is the LLM-backed per-file reviewer.
type Reviewer interface {
	Review(ctx context.Context, file analyzer.File) (analyzer.AIReview, error)
}

// Service owns a compiled review graph and its collaborators.
type Service struct {
	fetcher  Fetcher
	notifier Notifier
	reviewer Reviewer
	security *analyzer.SecurityAnalyzer
	quality  *analyzer.QualityAnalyzer
	coverage *analyzer.CoverageAnalyzer
	docs     *analyzer.DocAnalyzer
	decision *decision.Service
	executor *executor.Service
	graph    *graph.Compiled
	logger   *zap.Logger

	executorOptions []executor.Option
}

// Option customises the review service.
type Option func(*Service)

// WithLogger replaces the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReviewer attaches the LLM reviewer. Without one the ai_review branch
// records a per-branch failure instead of a review.
func WithReviewer(reviewer Reviewer) Option {
	return func(s *Service) {
		s.reviewer = reviewer
	}
}

// WithNotifier attaches a notification sender.
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithExecutorOptions forwards options (timeout, listener, ...) to the
// underlying executor.
func WithExecutorOptions(options ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, options...)
	}
}

// New builds the review service and compiles its graph; a malformed topology
// fails here, before any run starts.
func New(fetcher Fetcher, thresholds decision.Thresholds, options ...Option) (*Service, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	s := &Service{
		fetcher:  fetcher,
		security: analyzer.NewSecurityAnalyzer(),
		quality:  analyzer.NewQualityAnalyzer(),
		coverage: analyzer.NewCoverageAnalyzer(),
		docs:     analyzer.NewDocAnalyzer(),
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}
	s.decision = decision.New(thresholds, decision.WithLogger(s.logger))

	reducers := state.NewReducers().
		Register(keyAnalysesCompleted, state.Append).
		Register(keyNotifications, state.Append)
	s.executor = executor.New(reducers,
		append([]executor.Option{executor.WithLogger(s.logger)}, s.executorOptions...)...)

	compiled, err := s.buildGraph()
	if err != nil {
		return nil, err
	}
	s.graph = compiled
	return s, nil
}

// buildGraph wires the fixed nine-node topology.
func (s *Service) buildGraph() (*graph.Compiled, error) {
	analyses := []string{nodeSecurity, nodeQuality, nodeCoverage, nodeAIReview, nodeDocumentation}
	g := graph.New().
		AddNode(nodeDetector, s.detectNode).
		AddNode(nodeSecurity, s.securityNode).
		AddNode(nodeQuality, s.qualityNode).
		AddNode(nodeCoverage, s.coverageNode).
		AddNode(nodeAIReview, s.aiReviewNode).
		AddNode(nodeDocumentation, s.documentationNode).
		AddNode(nodeCoordinator, s.coordinatorNode).
		AddNode(nodeDecision, s.decisionNode).
		AddNode(nodeReport, s.reportNode).
		SetEntryPoint(nodeDetector).
		AddRouter(nodeDetector, s.routeAfterDetection, analyses...).
		AddEdge(nodeSecurity, nodeCoordinator).
		AddEdge(nodeQuality, nodeCoordinator).
		AddEdge(nodeCoverage, nodeCoordinator).
		AddEdge(nodeAIReview, nodeCoordinator).
		AddEdge(nodeDocumentation, nodeCoordinator).
		AddRouter(nodeCoordinator, s.routeAfterCoordination, nodeDecision).
		AddEdge(nodeDecision, nodeReport).
		AddEdge(nodeReport, graph.Terminal)
	return g.Compile()
}

// Request identifies the pull request to review.
type Request struct {
	Owner  string
	Repo   string
	Number int
}

// Summary is the caller-facing result of one run.
type Summary struct {
	ReviewID string
	Decision decision.Result
	Metrics  decision.Metrics
	Report   *Report
	Errors   []executor.BranchError
	State    state.State
}

// Review executes the workflow for one pull request. The summary is returned
// even when err is non-nil so callers can inspect partial results and the
// accumulated error list.
func (s *Service) Review(ctx context.Context, request Request) (*Summary, error) {
	id := reviewID()
	s.logger.Info("starting review",
		zap.String("reviewID", id),
		zap.String("repo", request.Owner+"/"+request.Repo),
		zap.Int("pr", request.Number))

	initial := state.State{
		keyReviewID:  id,
		keyRepoOwner: request.Owner,
		keyRepoName:  request.Repo,
		keyPRNumber:  request.Number,
		keyTimestamp: clock.Now().Format(time.RFC3339),
	}
	final, err := s.executor.Run(ctx, s.graph, initial)
	summary := summarize(final)
	if err != nil {
		s.logger.Error("review ended with error", zap.String("reviewID", id), zap.Error(err))
		return summary, err
	}
	s.logger.Info("review completed",
		zap.String("reviewID", id),
		zap.String("decision", string(summary.Decision.Outcome)))
	return summary, nil
}

func summarize(final state.State) *Summary {
	summary := &Summary{
		ReviewID: final.String(keyReviewID),
		State:    final,
	}
	if result, ok := final[keyDecision].(decision.Result); ok {
		summary.Decision = result
	}
	if metrics, ok := final[keyDecisionMetrics].(decision.Metrics); ok {
		summary.Metrics = metrics
	}
	if report, ok := final[keyReport].(*Report); ok {
		summary.Report = report
	}
	for _, item := range final.List(state.KeyErrors) {
		if branchErr, ok := item.(executor.BranchError); ok {
			summary.Errors = append(summary.Errors, branchErr)
		}
	}
	return summary
}

// reviewID mints an immutable run identifier, e.g. REV-20260823-4F1A09BC.
func reviewID() string {
	raw := strings.ReplaceAll(idgen.New(), "-", "")
	if len(raw) > 8 {
		raw = raw[:8]
	}
	return fmt.Sprintf("REV-%s-%s", clock.Now().Format("20060102"), strings.ToUpper(raw))
}
