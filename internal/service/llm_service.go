package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"askhub/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// chatClient is the slice of the go-openai client the oracle wrapper needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CompletionParams are the per-call sampling knobs of the generation and
// classification oracles. ReasoningEffort is optional; an empty value is
// simply not forwarded.
type CompletionParams struct {
	Temperature     float32
	MaxTokens       int
	TopP            float32
	ReasoningEffort string
}

// completer is the oracle contract consumed by the moderation classifier and
// the answer synthesizer: one system prompt, one user prompt, one
// non-streaming text completion back.
type completer interface {
	Complete(ctx context.Context, system, user string, params CompletionParams) (string, error)
}

// LLMService wraps an OpenAI-compatible chat completions endpoint (Groq by
// default). The client is built lazily exactly once and shared; calls hold no
// in-process locks while the network request is in flight.
type LLMService struct {
	cfg    *config.LLMConfig
	logger *zap.Logger

	initOnce sync.Once
	client   chatClient
}

func NewLLMService(cfg *config.LLMConfig, logger *zap.Logger) *LLMService {
	return &LLMService{
		cfg:    cfg,
		logger: logger,
	}
}

// newLLMTestService wires a pre-built client, for tests.
func newLLMTestService(cfg *config.LLMConfig, client chatClient, logger *zap.Logger) *LLMService {
	s := NewLLMService(cfg, logger)
	s.initOnce.Do(func() { s.client = client })
	return s
}

// DefaultParams returns the configured sampling parameters.
func (s *LLMService) DefaultParams() CompletionParams {
	return CompletionParams{
		Temperature:     s.cfg.Temperature,
		MaxTokens:       s.cfg.MaxTokens,
		TopP:            s.cfg.TopP,
		ReasoningEffort: s.cfg.ReasoningEffort,
	}
}

// Complete sends one system+user message pair and returns the full completion
// text. No retries; a failure is terminal for this attempt and the caller
// decides how to degrade.
func (s *LLMService) Complete(ctx context.Context, system, user string, params CompletionParams) (string, error) {
	s.initOnce.Do(func() {
		clientConfig := openai.DefaultConfig(s.cfg.APIKey)
		if s.cfg.BaseURL != "" {
			clientConfig.BaseURL = s.cfg.BaseURL
		}
		s.client = openai.NewClientWithConfig(clientConfig)
		s.logger.Info("Chat completion client initialized", zap.String("model", s.cfg.Model))
	})

	// Temperature carries omitempty, so a literal 0 would vanish from the
	// wire request and the endpoint would fall back to its own default.
	temperature := params.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   params.MaxTokens,
		TopP:        params.TopP,
		Stream:      false,
	}
	if params.ReasoningEffort != "" {
		req.ReasoningEffort = params.ReasoningEffort
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrOracleUnavailable)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
