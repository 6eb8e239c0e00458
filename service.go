package pullwise

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pullwise/pullwise/runtime/executor"
	"github.com/pullwise/pullwise/service/analyzer"
	"github.com/pullwise/pullwise/service/github"
	"github.com/pullwise/pullwise/service/mail"
	"github.com/pullwise/pullwise/service/review"
	"github.com/pullwise/pullwise/tracing"
)

// Version identifies the engine build for tracing and notifications.
const Version = "0.1.0"

// Service wires configuration, collaborators and the review workflow into a
// ready-to-run engine.
type Service struct {
	config   *Config
	logger   *zap.Logger
	review   *review.Service
	fetcher  review.Fetcher
	notifier review.Notifier
	reviewer review.Reviewer
	listener executor.Listener
}

// New assembles the engine. The graph is compiled here, so a malformed
// topology or incomplete wiring fails before any review starts.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(s)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	if s.logger == nil {
		logger, err := newLogger(s.config.Log)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		s.logger = logger
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init("pullwise", Version, s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	if s.fetcher == nil {
		s.fetcher = github.New(s.config.GitHub, s.logger.Named("github"))
	}
	if s.notifier == nil {
		s.notifier = mail.New(s.config.Mail, s.logger.Named("mail"))
	}
	if s.reviewer == nil && s.config.AI.Enabled() {
		reviewer, err := analyzer.NewAIReviewer(s.config.AI, s.logger.Named("ai"))
		if err != nil {
			return err
		}
		s.reviewer = reviewer
	}
	if s.reviewer == nil {
		s.logger.Warn("ai reviewer not configured; the ai_review branch will fail per run")
	}

	var executorOptions []executor.Option
	if timeout := time.Duration(s.config.RunTimeout); timeout > 0 {
		executorOptions = append(executorOptions, executor.WithTimeout(timeout))
	}
	if s.listener != nil {
		executorOptions = append(executorOptions, executor.WithListener(s.listener))
	}
	reviewService, err := review.New(s.fetcher, s.config.Thresholds,
		review.WithLogger(s.logger.Named("review")),
		review.WithNotifier(s.notifier),
		review.WithReviewer(s.reviewer),
		review.WithExecutorOptions(executorOptions...),
	)
	if err != nil {
		return err
	}
	s.review = reviewService
	return nil
}

// Review runs the workflow for one pull request.
func (s *Service) Review(ctx context.Context, owner, repo string, number int) (*review.Summary, error) {
	return s.review.Review(ctx, review.Request{Owner: owner, Repo: repo, Number: number})
}

// Config exposes the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Logger exposes the engine logger for callers embedding the service.
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

func newLogger(cfg LogConfig) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapConfig.Level = level
	}
	return zapConfig.Build()
}
