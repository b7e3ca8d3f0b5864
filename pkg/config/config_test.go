package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "askhub", cfg.Database.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)

	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.ReasoningEffort)

	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 1536, cfg.Embedding.Dimensions)

	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.InDelta(t, 0.7, cfg.RAG.SimilarityThreshold, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("EMBEDDING_DIMENSIONS", "384")
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "0.6")
	t.Setenv("LLM_REASONING_EFFORT", "low")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.InDelta(t, 0.6, cfg.RAG.SimilarityThreshold, 1e-9)
	assert.Equal(t, "low", cfg.LLM.ReasoningEffort)
}

func TestEmbeddingKeyFallsBackToLLMKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "shared-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "shared-key", cfg.Embedding.APIKey)

	t.Setenv("EMBEDDING_API_KEY", "dedicated-key")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "dedicated-key", cfg.Embedding.APIKey)
}
