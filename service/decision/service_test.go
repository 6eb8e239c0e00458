package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func passing() Metrics {
	return Metrics{
		SecurityScore: 8.5,
		QualityScore:  7.8,
		Coverage:      85.0,
		Confidence:    0.85,
		Documentation: 75.0,
	}
}

func TestService_Evaluate(t *testing.T) {
	testCases := []struct {
		description       string
		metrics           Metrics
		expected          Outcome
		requiresAttention bool
	}{
		{
			description: "all thresholds met",
			metrics:     passing(),
			expected:    OutcomeAutoApprove,
		},
		{
			description: "security below threshold escalates even with great quality",
			metrics: func() Metrics {
				m := passing()
				m.SecurityScore = 5.0
				m.QualityScore = 9.0
				return m
			}(),
			expected:          OutcomeCriticalEscalation,
			requiresAttention: true,
		},
		{
			description: "high severity findings escalate despite a passing score",
			metrics: func() Metrics {
				m := passing()
				m.HighSeverityFindings = 2
				return m
			}(),
			expected:          OutcomeCriticalEscalation,
			requiresAttention: true,
		},
		{
			description: "quality below threshold requires a human",
			metrics: func() Metrics {
				m := passing()
				m.QualityScore = 6.5
				return m
			}(),
			expected:          OutcomeHumanReview,
			requiresAttention: true,
		},
		{
			description: "coverage below threshold requires a human",
			metrics: func() Metrics {
				m := passing()
				m.Coverage = 60.0
				return m
			}(),
			expected:          OutcomeHumanReview,
			requiresAttention: true,
		},
		{
			description: "low confidence requires a human",
			metrics: func() Metrics {
				m := passing()
				m.Confidence = 0.5
				return m
			}(),
			expected:          OutcomeHumanReview,
			requiresAttention: true,
		},
		{
			description: "only documentation short routes to documentation review",
			metrics: func() Metrics {
				m := passing()
				m.Documentation = 60.0
				return m
			}(),
			expected:          OutcomeDocumentationReview,
			requiresAttention: true,
		},
		{
			description: "security outranks a simultaneous documentation short",
			metrics: func() Metrics {
				m := passing()
				m.SecurityScore = 3.0
				m.Documentation = 10.0
				return m
			}(),
			expected:          OutcomeCriticalEscalation,
			requiresAttention: true,
		},
		{
			description: "quality outranks coverage when both fail",
			metrics: func() Metrics {
				m := passing()
				m.QualityScore = 2.0
				m.Coverage = 10.0
				return m
			}(),
			expected:          OutcomeHumanReview,
			requiresAttention: true,
		},
		{
			description:       "absent metrics fail conservatively",
			metrics:           Metrics{},
			expected:          OutcomeCriticalEscalation,
			requiresAttention: true,
		},
	}

	service := New(DefaultThresholds())
	for _, testCase := range testCases {
		result := service.Evaluate(testCase.metrics)
		assert.Equal(t, testCase.expected, result.Outcome, testCase.description)
		assert.Equal(t, testCase.requiresAttention, result.RequiresAttention, testCase.description)
		assert.NotEmpty(t, result.Reason, testCase.description)
	}
}

func TestService_EvaluateCustomThresholds(t *testing.T) {
	// A relaxed policy approves metrics the stock policy would flag.
	relaxed := Thresholds{Security: 5.0, Quality: 5.0, Coverage: 50.0, Confidence: 0.5, Documentation: 40.0}
	service := New(relaxed)

	metrics := Metrics{SecurityScore: 6.0, QualityScore: 6.0, Coverage: 55.0, Confidence: 0.6, Documentation: 45.0}
	result := service.Evaluate(metrics)
	assert.Equal(t, OutcomeAutoApprove, result.Outcome)
	assert.False(t, result.RequiresAttention)

	strict := New(DefaultThresholds())
	assert.NotEqual(t, OutcomeAutoApprove, strict.Evaluate(metrics).Outcome)
}
