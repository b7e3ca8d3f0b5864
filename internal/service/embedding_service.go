package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"askhub/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// embeddingClient is the slice of the go-openai client the embedder needs.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// EmbeddingService turns raw text into fixed-dimension vectors via an
// OpenAI-compatible embeddings endpoint. The client is built lazily exactly
// once; concurrent first callers share the same initialization. The client is
// never mutated after init and is safe for concurrent use.
type EmbeddingService struct {
	cfg    *config.EmbeddingConfig
	logger *zap.Logger

	initOnce sync.Once
	client   embeddingClient
}

func NewEmbeddingService(cfg *config.EmbeddingConfig, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{
		cfg:    cfg,
		logger: logger,
	}
}

// newEmbeddingTestService wires a pre-built client, for tests.
func newEmbeddingTestService(cfg *config.EmbeddingConfig, client embeddingClient, logger *zap.Logger) *EmbeddingService {
	s := NewEmbeddingService(cfg, logger)
	s.initOnce.Do(func() { s.client = client })
	return s
}

// Dimensions returns the configured vector dimensionality.
func (s *EmbeddingService) Dimensions() int {
	return s.cfg.Dimensions
}

// Embed returns the embedding vector for text. Text is normalized first
// (newlines collapsed to spaces, surrounding whitespace trimmed); fully empty
// text fails with ErrEmptyInput. Identical text and model always yield the
// same vector, so results are safe to persist.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if text == "" {
		return nil, ErrEmptyInput
	}

	s.initOnce.Do(func() {
		clientConfig := openai.DefaultConfig(s.cfg.APIKey)
		if s.cfg.BaseURL != "" {
			clientConfig.BaseURL = s.cfg.BaseURL
		}
		s.client = openai.NewClientWithConfig(clientConfig)
		s.logger.Info("Embedding client initialized",
			zap.String("model", s.cfg.Model),
			zap.Int("dimensions", s.cfg.Dimensions),
		)
	})

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(s.cfg.Model),
		Dimensions: s.cfg.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrOracleUnavailable)
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != s.cfg.Dimensions {
		// Configuration error, not an oracle hiccup: the model disagrees
		// with the collection's vector column.
		return nil, fmt.Errorf("embedding model %q returned %d dimensions, configured for %d",
			s.cfg.Model, len(embedding), s.cfg.Dimensions)
	}

	return embedding, nil
}
