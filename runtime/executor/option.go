package executor

import (
	"time"

	"go.uber.org/zap"
)

// Option customises the executor service.
type Option func(*Service)

// WithLogger replaces the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithListener registers a lifecycle event listener. Passing nil disables the
// callback entirely.
func WithListener(listener Listener) Option {
	return func(s *Service) {
		s.listener = listener
	}
}

// WithTimeout sets a run-level deadline. Zero means no deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithMaxSteps overrides the routing-iteration bound.
func WithMaxSteps(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxSteps = max
		}
	}
}
