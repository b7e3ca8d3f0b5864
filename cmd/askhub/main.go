package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"askhub/db"
	"askhub/internal/api"
	"askhub/internal/api/handlers"
	"askhub/internal/pubsub"
	"askhub/internal/repository"
	"askhub/internal/service"
	"askhub/pkg/auth"
	"askhub/pkg/config"
	"askhub/pkg/logger"
	"askhub/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting askhub service")

	ctx := context.Background()

	// The vector extension must exist before the pool registers pgvector
	// codecs on its connections.
	if err := postgres.EnsureVectorExtension(ctx, &cfg.Database); err != nil {
		appLogger.Fatal("Failed to enable vector extension", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(postgres.URL(&cfg.Database), appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, appLogger)
	questionRepo := repository.NewQuestionRepository(pool, appLogger)
	answerRepo := repository.NewAnswerRepository(pool, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(pool, cfg.Embedding.Dimensions, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	embeddingService := service.NewEmbeddingService(&cfg.Embedding, appLogger)
	llmService := service.NewLLMService(&cfg.LLM, appLogger)

	vectorStore := service.NewVectorStore(knowledgeRepo, embeddingService, appLogger)
	if err := vectorStore.EnsureCollection(ctx); err != nil {
		appLogger.Fatal("Failed to bootstrap knowledge collection", zap.Error(err))
	}

	moderationService := service.NewModerationService(llmService, userRepo, appLogger)
	ragService := service.NewRAGService(vectorStore, llmService, llmService.DefaultParams(), appLogger)

	broker := pubsub.NewBroker[any]()
	defer broker.Shutdown()

	questionService := service.NewQuestionService(
		questionRepo, answerRepo, userRepo,
		moderationService, ragService, broker,
		cfg.RAG.TopK, cfg.RAG.SimilarityThreshold,
		appLogger,
	)
	healthService := service.NewHealthService(pool, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	questionHandler := handlers.NewQuestionHandler(questionService, appLogger)
	healthHandler := handlers.NewHealthHandler(healthService)

	// Setup router
	app := api.SetupRouter(authHandler, questionHandler, healthHandler, broker, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
