// Command import replays answered questions into the knowledge base so
// retrieval works over historical data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"askhub/internal/repository"
	"askhub/internal/service"
	"askhub/pkg/config"
	"askhub/pkg/logger"
	"askhub/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "run selection and counting without writing anything")
	latest := flag.Bool("latest", false, "ingest the newest answer per question instead of the oldest")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	ctx := context.Background()

	if err := postgres.EnsureVectorExtension(ctx, &cfg.Database); err != nil {
		appLogger.Fatal("Failed to enable vector extension", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool, appLogger)
	answerRepo := repository.NewAnswerRepository(pool, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(pool, cfg.Embedding.Dimensions, appLogger)

	embeddingService := service.NewEmbeddingService(&cfg.Embedding, appLogger)
	llmService := service.NewLLMService(&cfg.LLM, appLogger)
	vectorStore := service.NewVectorStore(knowledgeRepo, embeddingService, appLogger)
	if err := vectorStore.EnsureCollection(ctx); err != nil {
		appLogger.Fatal("Failed to bootstrap knowledge collection", zap.Error(err))
	}
	ragService := service.NewRAGService(vectorStore, llmService, llmService.DefaultParams(), appLogger)

	importer := service.NewBulkImporter(questionRepo, answerRepo, ragService, appLogger)

	policy := service.PolicyEarliest
	if *latest {
		policy = service.PolicyLatest
	}

	if *dryRun {
		fmt.Println("Running in DRY RUN mode - no data will be imported")
	}
	fmt.Println("Starting bulk import of Q&A pairs to knowledge base...")

	stats, err := importer.Run(ctx, policy, *dryRun)
	if err != nil {
		appLogger.Fatal("Bulk import failed", zap.Error(err))
	}

	fmt.Println()
	fmt.Println("==================================================")
	fmt.Println("Import Statistics:")
	fmt.Println("==================================================")
	fmt.Printf("Total questions found: %d\n", stats.TotalQuestions)
	fmt.Printf("Questions with answers: %d\n", stats.QuestionsWithAnswers)
	fmt.Printf("Successfully imported: %d\n", stats.Imported)
	fmt.Printf("Skipped: %d\n", stats.Skipped)
	fmt.Printf("Errors: %d\n", stats.Errors)

	if stats.Errors > 0 {
		fmt.Println("\nErrors:")
		for _, e := range stats.ErrorDetails {
			fmt.Printf("  - Question %s: %s\n", e.QuestionID, e.Error)
		}
	}
	fmt.Println("==================================================")
}
