// Package mail sends review notifications over SMTP. Delivery failures
// degrade to a logged warning; a notification never aborts a review run.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Config holds SMTP connectivity and addressing.
type Config struct {
	Host     string   `yaml:"host" json:"host"`
	Port     int      `yaml:"port" json:"port"`
	From     string   `yaml:"from" json:"from"`
	Password string   `yaml:"password" json:"password"`
	To       []string `yaml:"to" json:"to"`
}

// Enabled reports whether the configuration is complete enough to send.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

// Service sends plain-text notifications.
type Service struct {
	config Config
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	logger *zap.Logger
}

// New creates a mail service. When the configuration is incomplete the
// service stays usable and every Send becomes a logged no-op.
func New(config Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Port == 0 {
		config.Port = 587
	}
	return &Service{config: config, send: smtp.SendMail, logger: logger}
}

// Send delivers one notification. It returns the delivery error for callers
// that want to record it, but callers are expected to treat it as a warning.
func (s *Service) Send(subject, body string) error {
	if !s.config.Enabled() {
		s.logger.Warn("mail not configured, skipping notification", zap.String("subject", subject))
		return nil
	}
	message := strings.Join([]string{
		"From: " + s.config.From,
		"To: " + strings.Join(s.config.To, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.From, s.config.Password, s.config.Host)
	if err := s.send(addr, auth, s.config.From, s.config.To, []byte(message)); err != nil {
		s.logger.Warn("failed to send notification", zap.String("subject", subject), zap.Error(err))
		return err
	}
	s.logger.Info("notification sent", zap.String("subject", subject))
	return nil
}
