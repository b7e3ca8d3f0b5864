package service

import (
	"context"
	"encoding/json"
	"testing"

	"askhub/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockChatClient struct {
	content   string
	err       error
	noChoices bool

	lastRequest openai.ChatCompletionRequest
}

func (m *mockChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastRequest = req
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	if m.noChoices {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: m.content}},
		},
	}, nil
}

func llmConfig() *config.LLMConfig {
	return &config.LLMConfig{
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0.5,
		MaxTokens:   1024,
		TopP:        1.0,
	}
}

func TestCompleteBuildsRequest(t *testing.T) {
	client := &mockChatClient{content: "  the answer  \n"}
	svc := newLLMTestService(llmConfig(), client, zap.NewNop())

	got, err := svc.Complete(context.Background(), "system prompt", "user prompt", CompletionParams{
		Temperature: 0.0,
		MaxTokens:   300,
		TopP:        1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", got)

	req := client.lastRequest
	assert.Equal(t, "llama-3.3-70b-versatile", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "system prompt", req.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Equal(t, "user prompt", req.Messages[1].Content)
	assert.False(t, req.Stream)
	assert.Equal(t, 300, req.MaxTokens)
	assert.Empty(t, req.ReasoningEffort)
}

func TestCompleteZeroTemperatureStaysOnWire(t *testing.T) {
	client := &mockChatClient{content: "ok"}
	svc := newLLMTestService(llmConfig(), client, zap.NewNop())

	_, err := svc.Complete(context.Background(), "s", "u", CompletionParams{
		Temperature: 0.0,
		MaxTokens:   300,
		TopP:        1.0,
	})
	require.NoError(t, err)

	// Temperature is omitempty in the request struct; a literal zero would
	// be dropped and the endpoint would sample at its own default.
	assert.Positive(t, client.lastRequest.Temperature)

	body, err := json.Marshal(client.lastRequest)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"temperature"`)
}

func TestCompleteForwardsReasoningEffort(t *testing.T) {
	client := &mockChatClient{content: "ok"}
	svc := newLLMTestService(llmConfig(), client, zap.NewNop())

	_, err := svc.Complete(context.Background(), "s", "u", CompletionParams{ReasoningEffort: "low"})
	require.NoError(t, err)
	assert.Equal(t, "low", client.lastRequest.ReasoningEffort)
}

func TestCompleteOracleFailure(t *testing.T) {
	client := &mockChatClient{err: errBoom}
	svc := newLLMTestService(llmConfig(), client, zap.NewNop())

	_, err := svc.Complete(context.Background(), "s", "u", svc.DefaultParams())
	assert.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := &mockChatClient{noChoices: true}
	svc := newLLMTestService(llmConfig(), client, zap.NewNop())

	_, err := svc.Complete(context.Background(), "s", "u", svc.DefaultParams())
	assert.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestDefaultParamsMirrorConfig(t *testing.T) {
	svc := NewLLMService(llmConfig(), zap.NewNop())

	params := svc.DefaultParams()
	assert.InDelta(t, 0.5, params.Temperature, 1e-6)
	assert.Equal(t, 1024, params.MaxTokens)
	assert.InDelta(t, 1.0, params.TopP, 1e-6)
}
