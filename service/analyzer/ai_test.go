package analyzer

import (
	"context"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCompleter struct {
	content string
	err     error
	request openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.request = request
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func TestAIReviewer_Review(t *testing.T) {
	stub := &stubCompleter{content: "```json\n" + `{
		"overall_score": 0.85,
		"summary": "solid change",
		"issues": ["missing nil check"],
		"suggestions": ["add a benchmark"]
	}` + "\n```"}
	reviewer := &AIReviewer{client: stub, model: "test-model", logger: zap.NewNop()}

	review, err := reviewer.Review(context.Background(), File{Name: "handler.go", Content: "func Handle() {}"})
	require.NoError(t, err)
	assert.Equal(t, "handler.go", review.File)
	assert.Equal(t, 0.85, review.OverallScore)
	assert.Equal(t, "solid change", review.Summary)
	assert.Equal(t, []string{"missing nil check"}, review.Issues)
	assert.Equal(t, []string{"add a benchmark"}, review.Suggestions)

	assert.Equal(t, "test-model", stub.request.Model)
	require.Len(t, stub.request.Messages, 2)
	assert.Contains(t, stub.request.Messages[1].Content, "handler.go")
}

func TestAIReviewer_ReviewPropagatesTransportError(t *testing.T) {
	stub := &stubCompleter{err: fmt.Errorf("rate limited")}
	reviewer := &AIReviewer{client: stub, model: "test-model", logger: zap.NewNop()}

	_, err := reviewer.Review(context.Background(), File{Name: "handler.go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler.go")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestParseReview(t *testing.T) {
	review, err := parseReview("a.go", `{"overall_score": 0.5, "summary": "ok"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.5, review.OverallScore)
	assert.Equal(t, "ok", review.Summary)
	assert.Empty(t, review.Issues)

	_, err = parseReview("a.go", "the model rambled instead of answering")
	assert.Error(t, err)
}

func TestNewAIReviewer_RequiresKey(t *testing.T) {
	_, err := NewAIReviewer(AIConfig{}, zap.NewNop())
	assert.Error(t, err)

	reviewer, err := NewAIReviewer(AIConfig{APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, reviewer)
}
