package pullwise

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/pullwise/pullwise/service/analyzer"
	"github.com/pullwise/pullwise/service/decision"
	"github.com/pullwise/pullwise/service/github"
	"github.com/pullwise/pullwise/service/mail"
)

// Config is the serialisable engine configuration. Start from DefaultConfig
// and override; thresholds are consumed by the decision layer, never
// hard-coded in engine code.
type Config struct {
	Thresholds decision.Thresholds `yaml:"thresholds" json:"thresholds"`
	GitHub     github.Config       `yaml:"github" json:"github"`
	Mail       mail.Config         `yaml:"mail" json:"mail"`
	AI         analyzer.AIConfig   `yaml:"ai" json:"ai"`
	Log        LogConfig           `yaml:"log" json:"log"`
	Tracing    TracingConfig       `yaml:"tracing" json:"tracing"`
	// RunTimeout bounds a whole review run; zero disables the deadline.
	RunTimeout Duration `yaml:"runTimeout" json:"runTimeout"`
}

// Duration decodes from a human-readable YAML string such as "90s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// TracingConfig controls the OpenTelemetry stdout exporter.
type TracingConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	OutputFile string `yaml:"outputFile" json:"outputFile"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: decision.DefaultThresholds(),
		GitHub:     github.Config{APIURL: github.DefaultAPIURL},
		Log:        LogConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML configuration from any URL the abstract file
// storage understands (file://, embed://, mem://, cloud schemes) and applies
// environment overrides for credentials.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config from %s: %w", URL, err)
	}
	config.applyEnv()
	return config, nil
}

// applyEnv lets credentials live in the environment rather than on disk.
func (c *Config) applyEnv() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.AI.APIKey == "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Mail.Password = v
	}
}
