package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	RAG       RAGConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint
// (Groq by default). ReasoningEffort is optional and only forwarded when set.
type LLMConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float32
	MaxTokens       int
	TopP            float32
	ReasoningEffort string
}

// EmbeddingConfig describes the embedding oracle. Dimensions must match the
// vector column of the knowledge collection; a mismatch is detected at the
// first write, not silently tolerated.
type EmbeddingConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

type RAGConfig struct {
	TopK                int
	SimilarityThreshold float64
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for Docker/K8s.
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	temperature, _ := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.5"), 32)
	maxTokens, _ := strconv.Atoi(getEnv("LLM_MAX_TOKENS", "1024"))
	topP, _ := strconv.ParseFloat(getEnv("LLM_TOP_P", "1.0"), 32)
	dimensions, _ := strconv.Atoi(getEnv("EMBEDDING_DIMENSIONS", "1536"))
	ragTopK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "3"))
	ragThreshold, _ := strconv.ParseFloat(getEnv("RAG_SIMILARITY_THRESHOLD", "0.7"), 64)

	llmAPIKey := getEnv("LLM_API_KEY", "")

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "askhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		LLM: LLMConfig{
			APIKey:          llmAPIKey,
			BaseURL:         getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:           getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
			Temperature:     float32(temperature),
			MaxTokens:       maxTokens,
			TopP:            float32(topP),
			ReasoningEffort: getEnv("LLM_REASONING_EFFORT", ""),
		},
		Embedding: EmbeddingConfig{
			APIKey:     getEnv("EMBEDDING_API_KEY", llmAPIKey),
			BaseURL:    getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimensions: dimensions,
		},
		RAG: RAGConfig{
			TopK:                ragTopK,
			SimilarityThreshold: ragThreshold,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
