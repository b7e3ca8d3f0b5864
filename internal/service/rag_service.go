package service

import (
	"context"
	"fmt"
	"strings"

	"askhub/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ragSystemPrompt = `You are an AI assistant for a Q&A forum system. Your task is to synthesize a coherent and helpful answer
based on the given question and relevant context retrieved from a knowledge database of previous questions and answers.

Guidelines:
1. Provide a clear and concise answer to the question.
2. Use only the information from the relevant context to support your answer.
3. The context is retrieved based on semantic similarity, so some information might be missing or irrelevant.
4. Be transparent when there is insufficient information to fully answer the question.
5. Do not make up or infer information not present in the provided context.
6. If you cannot answer the question based on the given context, clearly state that.
7. Maintain a helpful and professional tone appropriate for a forum discussion.
8. If the context contains similar questions and answers, synthesize the best answer from them.

Format your response as a natural, conversational answer that would be helpful to someone asking this question.`

const (
	noContextAnswer   = "I don't have enough information in the knowledge base to answer this question accurately. Please wait for community members to respond."
	searchErrorAnswer = "The AI assistant encountered an error while searching the knowledge base. Please wait for community members to respond."
	genErrorAnswer    = "I encountered an error while generating an answer. Please wait for community members to respond."

	sourcePreviewRunes = 200
)

// vectorSearcher is the slice of VectorStore the synthesizer needs.
type vectorSearcher interface {
	Search(ctx context.Context, queryText string, limit int, threshold float64, filter map[string]string) ([]models.SearchResult, error)
	Upsert(ctx context.Context, content string, metadata map[string]string, id string) (uuid.UUID, error)
}

// RAGService synthesizes suggested answers from the knowledge base. It is a
// best-effort advisory feature: every failure degrades to an apology
// suggestion instead of an error, so the primary write path never fails on
// its account.
type RAGService struct {
	store     vectorSearcher
	completer completer
	params    CompletionParams
	logger    *zap.Logger
}

func NewRAGService(store vectorSearcher, completer completer, params CompletionParams, logger *zap.Logger) *RAGService {
	return &RAGService{
		store:     store,
		completer: completer,
		params:    params,
		logger:    logger,
	}
}

// GenerateAnswer retrieves up to limit entries above threshold, builds a
// grounded prompt and asks the generation oracle for a suggestion. An empty
// knowledge base is a normal outcome, not an error.
func (s *RAGService) GenerateAnswer(ctx context.Context, question string, limit int, threshold float64) models.RAGSuggestion {
	results, err := s.store.Search(ctx, question, limit, threshold, nil)
	if err != nil {
		s.logger.Error("Knowledge base search failed", zap.Error(err))
		return models.RAGSuggestion{
			Answer:      searchErrorAnswer,
			ContextUsed: false,
			Confidence:  0.0,
			Sources:     []models.SuggestionSource{},
			Err:         "search_error",
		}
	}

	if len(results) == 0 {
		return models.RAGSuggestion{
			Answer:      noContextAnswer,
			ContextUsed: false,
			Confidence:  0.0,
			Sources:     []models.SuggestionSource{},
		}
	}

	answer, err := s.completer.Complete(ctx, ragSystemPrompt, buildGroundedPrompt(question, formatContext(results)), s.params)
	if err != nil {
		s.logger.Error("Answer generation failed", zap.Error(err))
		return models.RAGSuggestion{
			Answer:      genErrorAnswer,
			ContextUsed: false,
			Confidence:  0.0,
			Sources:     []models.SuggestionSource{},
			Err:         "generation_error",
		}
	}

	var sum float64
	sources := make([]models.SuggestionSource, 0, len(results))
	for _, r := range results {
		sum += r.Similarity
		sources = append(sources, models.SuggestionSource{
			ID:         r.Entry.ID.String(),
			Content:    previewContent(r.Entry.Content),
			Similarity: r.Similarity,
		})
	}
	confidence := sum / float64(len(results))
	if confidence > 1.0 {
		confidence = 1.0
	}

	return models.RAGSuggestion{
		Answer:      answer,
		ContextUsed: true,
		Confidence:  confidence,
		Sources:     sources,
	}
}

// AddToKnowledgeBase formats the canonical Q&A content and upserts it.
// Ingestion is a side channel of the primary write: failures are logged and
// reported as false, never raised.
func (s *RAGService) AddToKnowledgeBase(ctx context.Context, question, answer, questionID string, metadata map[string]string) bool {
	content := fmt.Sprintf("Q: %s\n\nA: %s", strings.TrimSpace(question), strings.TrimSpace(answer))

	if metadata == nil {
		metadata = map[string]string{}
	}
	if questionID != "" {
		metadata["question_id"] = questionID
	}

	id, err := s.store.Upsert(ctx, content, metadata, questionID)
	if err != nil {
		s.logger.Error("Failed to add Q&A to knowledge base",
			zap.String("question_id", questionID),
			zap.Error(err),
		)
		return false
	}

	s.logger.Debug("Q&A added to knowledge base", zap.String("id", id.String()))
	return true
}

func formatContext(results []models.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("--- Reference %d (Relevance: %.1f%%) ---\n%s\n", i+1, r.Similarity*100, r.Entry.Content))
	}
	return strings.Join(blocks, "\n")
}

func buildGroundedPrompt(question, context string) string {
	return fmt.Sprintf(`You are a helpful assistant for a Q&A forum. Below is a user's question and relevant Q&A pairs from the knowledge base.

User's Question:
%s

Relevant Q&A Pairs from Knowledge Base:
%s

Instructions:
1. Analyze the user's question and the provided Q&A pairs
2. Synthesize a short, point-wise answer (bullet list), max 500-600 words total
3. Prefer concise bullets; if only one point, keep it as one short bullet
4. If context is partial, combine what is available; avoid speculation
5. If context is insufficient, say so clearly
6. Do not invent information not present in the provided context

Your Response:
Provide a short (<=500-600 words), bullet-point answer to the user's question based on the context above:`, question, context)
}

// previewContent truncates to the preview bound in runes so multi-byte text
// is never cut mid-character.
func previewContent(content string) string {
	runes := []rune(content)
	if len(runes) <= sourcePreviewRunes {
		return content
	}
	return string(runes[:sourcePreviewRunes]) + "..."
}
