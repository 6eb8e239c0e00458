// Package decision evaluates accumulated review metrics against configured
// thresholds and selects one of a closed set of outcomes. Checks run in a
// fixed priority order and the first matching condition wins: security
// dominates because a vulnerable change is irreversible once merged, the
// remaining checks are ordered by the operational cost of a false negative.
package decision

import (
	"fmt"

	"go.uber.org/zap"
)

// Outcome is the closed-set classification produced by the decision layer.
type Outcome string

const (
	OutcomeAutoApprove         Outcome = "auto_approve"
	OutcomeHumanReview         Outcome = "human_review"
	OutcomeCriticalEscalation  Outcome = "critical_escalation"
	OutcomeDocumentationReview Outcome = "documentation_review"
)

// Thresholds holds the configured floor for each metric. Values are supplied
// at construction time; the engine never hard-codes a numeric threshold.
type Thresholds struct {
	Security      float64 `yaml:"security" json:"security"`
	Quality       float64 `yaml:"quality" json:"quality"`
	Coverage      float64 `yaml:"coverage" json:"coverage"`
	Confidence    float64 `yaml:"confidence" json:"confidence"`
	Documentation float64 `yaml:"documentation" json:"documentation"`
}

// DefaultThresholds returns the stock review policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Security:      8.0,
		Quality:       7.0,
		Coverage:      80.0,
		Confidence:    0.8,
		Documentation: 70.0,
	}
}

// Metrics are the aggregated inputs to a decision. A metric that was never
// computed is left at its zero value, which fails its threshold - the
// conservative default for an absent analysis.
type Metrics struct {
	SecurityScore        float64 `json:"security_score"`
	QualityScore         float64 `json:"quality_score"`
	Coverage             float64 `json:"coverage"`
	Confidence           float64 `json:"confidence"`
	Documentation        float64 `json:"documentation"`
	HighSeverityFindings int     `json:"high_severity_findings"`
}

// Result is the single-valued outcome of one evaluation. Once written to the
// shared state it is immutable for the remainder of the run.
type Result struct {
	Outcome           Outcome `json:"outcome"`
	RequiresAttention bool    `json:"requires_attention"`
	Reason            string  `json:"reason"`
}

// Service applies a threshold policy to review metrics.
type Service struct {
	thresholds Thresholds
	logger     *zap.Logger
}

// Option customises the decision service.
type Option func(*Service)

// WithLogger replaces the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a decision service with the supplied policy.
func New(thresholds Thresholds, options ...Option) *Service {
	s := &Service{thresholds: thresholds, logger: zap.NewNop()}
	for _, option := range options {
		option(s)
	}
	return s
}

// Evaluate classifies the metrics. Evaluation order is significant: no
// further checks run once one fires.
func (s *Service) Evaluate(m Metrics) Result {
	t := s.thresholds
	var result Result
	switch {
	case m.SecurityScore < t.Security || m.HighSeverityFindings > 0:
		result = Result{
			Outcome:           OutcomeCriticalEscalation,
			RequiresAttention: true,
			Reason: fmt.Sprintf("security issues: score %.1f below %.1f or %d high severity findings",
				m.SecurityScore, t.Security, m.HighSeverityFindings),
		}
	case m.QualityScore < t.Quality:
		result = Result{
			Outcome:           OutcomeHumanReview,
			RequiresAttention: true,
			Reason:            fmt.Sprintf("quality score too low: %.2f < %.2f", m.QualityScore, t.Quality),
		}
	case m.Coverage < t.Coverage:
		result = Result{
			Outcome:           OutcomeHumanReview,
			RequiresAttention: true,
			Reason:            fmt.Sprintf("test coverage too low: %.1f%% < %.1f%%", m.Coverage, t.Coverage),
		}
	case m.Confidence < t.Confidence:
		result = Result{
			Outcome:           OutcomeHumanReview,
			RequiresAttention: true,
			Reason:            fmt.Sprintf("review confidence too low: %.2f < %.2f", m.Confidence, t.Confidence),
		}
	case m.Documentation < t.Documentation:
		result = Result{
			Outcome:           OutcomeDocumentationReview,
			RequiresAttention: true,
			Reason:            fmt.Sprintf("documentation coverage too low: %.1f%% < %.1f%%", m.Documentation, t.Documentation),
		}
	default:
		result = Result{Outcome: OutcomeAutoApprove, Reason: "all quality thresholds met"}
	}
	s.logger.Info("decision evaluated",
		zap.String("outcome", string(result.Outcome)),
		zap.Bool("requiresAttention", result.RequiresAttention),
		zap.String("reason", result.Reason))
	return result
}
