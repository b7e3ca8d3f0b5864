package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"askhub/internal/dto"
	"askhub/internal/models"
	"askhub/internal/pubsub"
	"askhub/pkg/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type questionStore interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	List(ctx context.Context, offset, limit uint64) ([]*models.Question, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.QuestionStatus) (int64, error)
}

type answerStore interface {
	Create(ctx context.Context, answer *models.Answer) error
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.Answer, error)
}

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// moderator gates submitted text and enforces bans.
type moderator interface {
	Classify(ctx context.Context, text string) models.ModerationVerdict
	BanUser(ctx context.Context, userID uuid.UUID) bool
}

// suggester produces advisory answers and feeds the knowledge base.
type suggester interface {
	GenerateAnswer(ctx context.Context, question string, limit int, threshold float64) models.RAGSuggestion
	AddToKnowledgeBase(ctx context.Context, question, answer, questionID string, metadata map[string]string) bool
}

// QuestionCreation is the outcome of a successful question submission: the
// persisted question, the advisory suggestion, and the moderation verdict
// that let it through.
type QuestionCreation struct {
	Question   *models.Question
	Suggestion models.RAGSuggestion
	Verdict    models.ModerationVerdict
}

// AnswerCreation is the outcome of a successful answer submission.
type AnswerCreation struct {
	Answer  *models.Answer
	Verdict models.ModerationVerdict
}

// QuestionService owns the question/answer lifecycle: moderation-gated
// creation, advisory RAG suggestions, knowledge ingestion on accepted
// answers, and broadcast events after each primary write commits.
type QuestionService struct {
	questions  questionStore
	answers    answerStore
	users      userStore
	moderation moderator
	rag        suggester
	events     pubsub.Publisher[any]
	topK       int
	threshold  float64
	logger     *zap.Logger

	guestMu sync.Mutex
}

func NewQuestionService(
	questions questionStore,
	answers answerStore,
	users userStore,
	moderation moderator,
	rag suggester,
	events pubsub.Publisher[any],
	topK int,
	threshold float64,
	logger *zap.Logger,
) *QuestionService {
	return &QuestionService{
		questions:  questions,
		answers:    answers,
		users:      users,
		moderation: moderation,
		rag:        rag,
		events:     events,
		topK:       topK,
		threshold:  threshold,
		logger:     logger,
	}
}

// List returns questions escalated-first then newest-first, each with its
// answers attached oldest-first.
func (s *QuestionService) List(ctx context.Context, offset, limit uint64) ([]*models.Question, error) {
	questions, err := s.questions.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	for _, q := range questions {
		answers, err := s.answers.ListByQuestion(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		q.Answers = answers
	}

	return questions, nil
}

func (s *QuestionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	answers, err := s.answers.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Answers = answers

	return question, nil
}

// CreateQuestion moderates and persists a new question. Anonymous
// submissions post as the shared guest account. Moderation and suggestion
// generation run concurrently; both degrade rather than fail, so only the
// primary write can return an error. A "ban" verdict rejects the submission
// with ErrContentRejected and removes the author (authenticated users only,
// the shared guest account is never deleted); a "flag" verdict persists the
// question as escalated.
func (s *QuestionService) CreateQuestion(ctx context.Context, message string, userID *uuid.UUID) (*QuestionCreation, error) {
	authorID, isGuest, err := s.resolveAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		verdict    models.ModerationVerdict
		suggestion models.RAGSuggestion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		verdict = s.moderation.Classify(gctx, message)
		return nil
	})
	g.Go(func() error {
		suggestion = s.rag.GenerateAnswer(gctx, message, s.topK, s.threshold)
		return nil
	})
	_ = g.Wait()

	if verdict.Action == models.ActionBan {
		if !isGuest {
			s.moderation.BanUser(ctx, authorID)
		}
		s.logger.Warn("Question rejected by moderation",
			zap.String("label", string(verdict.Label)),
			zap.String("reason", verdict.Reason),
		)
		return nil, ErrContentRejected
	}

	status := models.StatusPending
	if verdict.Action == models.ActionFlag {
		status = models.StatusEscalated
	}

	now := time.Now()
	question := &models.Question{
		ID:        uuid.New(),
		Message:   message,
		Status:    status,
		UserID:    authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}

	// Re-read to pick up the author username for the broadcast payload.
	persisted, err := s.questions.GetByID(ctx, question.ID)
	if err == nil {
		question = persisted
	}
	question.Answers = []*models.Answer{}

	s.events.Publish(pubsub.QuestionCreatedEvent, dto.QuestionToResponse(question))

	return &QuestionCreation{
		Question:   question,
		Suggestion: suggestion,
		Verdict:    verdict,
	}, nil
}

// CreateAnswer moderates and persists an answer, then feeds the accepted
// Q&A pair into the knowledge base. Ingestion is best-effort and never fails
// the write.
func (s *QuestionService) CreateAnswer(ctx context.Context, questionID uuid.UUID, message string, userID *uuid.UUID) (*AnswerCreation, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	authorID, isGuest, err := s.resolveAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	verdict := s.moderation.Classify(ctx, message)
	if verdict.Action == models.ActionBan {
		if !isGuest {
			s.moderation.BanUser(ctx, authorID)
		}
		s.logger.Warn("Answer rejected by moderation",
			zap.String("label", string(verdict.Label)),
			zap.String("question_id", questionID.String()),
			zap.String("reason", verdict.Reason),
		)
		return nil, ErrContentRejected
	}

	answer := &models.Answer{
		ID:         uuid.New(),
		QuestionID: questionID,
		Message:    message,
		UserID:     authorID,
		CreatedAt:  time.Now(),
	}

	if err := s.answers.Create(ctx, answer); err != nil {
		return nil, err
	}

	s.rag.AddToKnowledgeBase(ctx, question.Message, message, questionID.String(), nil)

	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err == nil {
		for _, a := range answers {
			if a.ID == answer.ID {
				answer = a
				break
			}
		}
	}

	s.events.Publish(pubsub.AnswerCreatedEvent, dto.AnswerCreatedPayload{
		QuestionID: questionID.String(),
		Answer:     dto.AnswerToResponse(answer),
	})

	return &AnswerCreation{Answer: answer, Verdict: verdict}, nil
}

// MarkAnswered sets a question's status to answered and broadcasts the
// change.
func (s *QuestionService) MarkAnswered(ctx context.Context, questionID uuid.UUID) error {
	affected, err := s.questions.UpdateStatus(ctx, questionID, models.StatusAnswered)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQuestionNotFound
	}

	s.events.Publish(pubsub.QuestionAnsweredEvent, dto.QuestionAnsweredPayload{
		QuestionID: questionID.String(),
	})

	return nil
}

// Suggest produces an advisory answer for arbitrary question text without
// persisting anything.
func (s *QuestionService) Suggest(ctx context.Context, question string) models.RAGSuggestion {
	return s.rag.GenerateAnswer(ctx, question, s.topK, s.threshold)
}

// resolveAuthor maps an optional authenticated user id to the posting
// author, falling back to the shared guest account.
func (s *QuestionService) resolveAuthor(ctx context.Context, userID *uuid.UUID) (uuid.UUID, bool, error) {
	if userID != nil {
		return *userID, false, nil
	}

	guest, err := s.getOrCreateGuestUser(ctx)
	if err != nil {
		return uuid.Nil, false, err
	}
	return guest.ID, true, nil
}

func (s *QuestionService) getOrCreateGuestUser(ctx context.Context) (*models.User, error) {
	s.guestMu.Lock()
	defer s.guestMu.Unlock()

	guest, err := s.users.GetByEmail(ctx, models.GuestEmail)
	if err == nil {
		return guest, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// The guest account never logs in; the hash only satisfies the schema.
	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	guest = &models.User{
		ID:           uuid.New(),
		Username:     "Guest",
		Email:        models.GuestEmail,
		PasswordHash: hash,
		Role:         models.RoleGuest,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, guest); err != nil {
		return nil, err
	}

	s.logger.Info("Guest account created", zap.String("user_id", guest.ID.String()))
	return guest, nil
}
