package analyzer

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const reviewSystemPrompt = `You are a strict code reviewer. Review the supplied file and respond with
a single JSON object: {"overall_score": <float 0..1>, "summary": <string>,
"issues": [<string>...], "suggestions": [<string>...]}. No prose outside the JSON.`

// AIConfig configures the LLM-backed reviewer. BaseURL may point at any
// OpenAI-compatible endpoint.
type AIConfig struct {
	APIKey  string `yaml:"apiKey" json:"apiKey"`
	BaseURL string `yaml:"baseURL" json:"baseURL"`
	Model   string `yaml:"model" json:"model"`
}

// Enabled reports whether the reviewer is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// completer abstracts the chat-completion call so tests can stub the wire.
type completer interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIReviewer asks a generative model for a per-file review and parses its
// JSON verdict.
type AIReviewer struct {
	client completer
	model  string
	logger *zap.Logger
}

// NewAIReviewer creates the LLM reviewer. It returns an error when the
// configuration is incomplete so the caller can decide whether to run the
// workflow without it.
func NewAIReviewer(cfg AIConfig, logger *zap.Logger) (*AIReviewer, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("ai reviewer not configured: missing API key")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &AIReviewer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}, nil
}

// Review submits one file for review.
func (r *AIReviewer) Review(ctx context.Context, file File) (AIReview, error) {
	request := openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reviewSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("File: %s\n\n%s", file.Name, file.Content)},
		},
	}
	response, err := r.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return AIReview{}, fmt.Errorf("ai review of %s failed: %w", file.Name, err)
	}
	if len(response.Choices) == 0 {
		return AIReview{}, fmt.Errorf("ai review of %s returned no choices", file.Name)
	}
	review, err := parseReview(file.Name, response.Choices[0].Message.Content)
	if err != nil {
		return AIReview{}, err
	}
	r.logger.Debug("ai review completed",
		zap.String("file", file.Name),
		zap.Float64("score", review.OverallScore))
	return review, nil
}

// parseReview extracts the verdict from the model output, tolerating markdown
// code fences around the JSON.
func parseReview(name, content string) (AIReview, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if !gjson.Valid(content) {
		return AIReview{}, fmt.Errorf("ai review of %s: response is not valid JSON", name)
	}
	review := AIReview{
		File:         name,
		OverallScore: gjson.Get(content, "overall_score").Float(),
		Summary:      gjson.Get(content, "summary").String(),
	}
	for _, item := range gjson.Get(content, "issues").Array() {
		review.Issues = append(review.Issues, item.String())
	}
	for _, item := range gjson.Get(content, "suggestions").Array() {
		review.Suggestions = append(review.Suggestions, item.String())
	}
	return review, nil
}
