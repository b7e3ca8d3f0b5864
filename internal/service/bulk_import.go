package service

import (
	"context"
	"strconv"

	"askhub/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnswerPolicy selects which of a question's answers feeds the knowledge
// base during bulk import.
type AnswerPolicy string

const (
	// PolicyEarliest ingests the oldest answer for each question.
	PolicyEarliest AnswerPolicy = "earliest"
	// PolicyLatest ingests the newest answer for each question.
	PolicyLatest AnswerPolicy = "latest"
)

// ImportError records one failed record within a batch.
type ImportError struct {
	QuestionID string `json:"question_id"`
	Error      string `json:"error"`
}

// ImportStats accumulates per-record outcomes over one batch run.
type ImportStats struct {
	TotalQuestions       int           `json:"total_questions"`
	QuestionsWithAnswers int           `json:"questions_with_answers"`
	Imported             int           `json:"imported"`
	Skipped              int           `json:"skipped"`
	Errors               int           `json:"errors"`
	ErrorDetails         []ImportError `json:"error_details"`
}

type answeredLister interface {
	ListAnswered(ctx context.Context) ([]*models.Question, error)
}

type answerLister interface {
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.Answer, error)
}

type knowledgeIngester interface {
	AddToKnowledgeBase(ctx context.Context, question, answer, questionID string, metadata map[string]string) bool
}

// BulkImporter replays historical answered questions into the knowledge
// base. One record's failure never aborts the batch; every outcome is
// counted in the returned stats.
type BulkImporter struct {
	questions answeredLister
	answers   answerLister
	ingester  knowledgeIngester
	logger    *zap.Logger
}

func NewBulkImporter(questions answeredLister, answers answerLister, ingester knowledgeIngester, logger *zap.Logger) *BulkImporter {
	return &BulkImporter{
		questions: questions,
		answers:   answers,
		ingester:  ingester,
		logger:    logger,
	}
}

// Run ingests one answer per answered question, chosen by policy. With
// dryRun set the full selection and counting logic executes but nothing is
// written.
func (b *BulkImporter) Run(ctx context.Context, policy AnswerPolicy, dryRun bool) (*ImportStats, error) {
	stats := &ImportStats{ErrorDetails: []ImportError{}}

	questions, err := b.questions.ListAnswered(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalQuestions = len(questions)

	for _, q := range questions {
		answers, err := b.answers.ListByQuestion(ctx, q.ID)
		if err != nil {
			stats.Errors++
			stats.ErrorDetails = append(stats.ErrorDetails, ImportError{
				QuestionID: q.ID.String(),
				Error:      err.Error(),
			})
			b.logger.Error("Failed to load answers for import",
				zap.String("question_id", q.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if len(answers) == 0 {
			stats.Skipped++
			continue
		}
		stats.QuestionsWithAnswers++

		// ListByQuestion returns oldest-first.
		best := answers[0]
		if policy == PolicyLatest {
			best = answers[len(answers)-1]
		}

		if dryRun {
			stats.Imported++
			continue
		}

		metadata := map[string]string{
			"question_id":         q.ID.String(),
			"answer_id":           best.ID.String(),
			"user_id":             q.UserID.String(),
			"question_created_at": q.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"answer_created_at":   best.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"total_answers":       strconv.Itoa(len(answers)),
			"status":              string(q.Status),
		}

		if b.ingester.AddToKnowledgeBase(ctx, q.Message, best.Message, q.ID.String(), metadata) {
			stats.Imported++
		} else {
			stats.Skipped++
		}
	}

	return stats, nil
}
