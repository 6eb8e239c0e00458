package review

// Shared-state field names. Fields written by exactly one node merge with the
// default last-write reducer; fields touched by concurrent cohort members
// (analysesCompleted, notifications and the reserved error list) merge with
// the list-append reducer.
const (
	keyReviewID  = "review_id"
	keyRepoOwner = "repo_owner"
	keyRepoName  = "repo_name"
	keyPRNumber  = "pr_number"
	keyTimestamp = "timestamp"

	keyPRDetails = "pr_details"
	keyFilesData = "files_data"

	keyAnalysesCompleted = "analyses_completed"

	keySecurityResults = "security_results"
	keyQualityResults  = "quality_results"
	keyCoverageResults = "coverage_results"
	keyAIReviews       = "ai_reviews"
	keyDocResults      = "documentation_results"

	keyDecision          = "decision"
	keyHasCriticalIssues = "has_critical_issues"
	keyCriticalReason    = "critical_reason"
	keyDecisionMetrics   = "decision_metrics"

	keyCoordinationSummary = "coordination_summary"
	keyReport              = "report"
	keyNotifications       = "notifications"
	keyUpdatedAt           = "updated_at"
)

// Node names of the review graph.
const (
	nodeDetector      = "pr_detector"
	nodeSecurity      = "security"
	nodeQuality       = "quality"
	nodeCoverage      = "coverage"
	nodeAIReview      = "ai_review"
	nodeDocumentation = "documentation"
	nodeCoordinator   = "coordinator"
	nodeDecision      = "decision"
	nodeReport        = "report"
)
