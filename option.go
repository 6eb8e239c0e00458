package pullwise

import (
	"go.uber.org/zap"

	"github.com/pullwise/pullwise/runtime/executor"
	"github.com/pullwise/pullwise/service/review"
)

// Option customises the top-level service.
type Option func(*Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLogger supplies a pre-built logger instead of one derived from config.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithFetcher overrides the pull-request fetcher; used by the demo command
// and tests to avoid network access.
func WithFetcher(fetcher review.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = fetcher
	}
}

// WithNotifier overrides the notification sender.
func WithNotifier(notifier review.Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithReviewer overrides the LLM reviewer.
func WithReviewer(reviewer review.Reviewer) Option {
	return func(s *Service) {
		s.reviewer = reviewer
	}
}

// WithListener observes executor lifecycle events, e.g. to feed a progress
// tracker.
func WithListener(listener executor.Listener) Option {
	return func(s *Service) {
		s.listener = listener
	}
}
