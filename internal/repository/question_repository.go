package repository

import (
	"context"
	"time"

	"askhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type QuestionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewQuestionRepository(db *pgxpool.Pool, logger *zap.Logger) *QuestionRepository {
	return &QuestionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	query := squirrel.Insert("questions").
		Columns("id", "message", "status", "user_id", "created_at", "updated_at").
		Values(question.ID, question.Message, question.Status, question.UserID, question.CreatedAt, question.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	query := squirrel.Select("q.id", "q.message", "q.status", "q.user_id", "u.username", "q.created_at", "q.updated_at").
		From("questions q").
		Join("users u ON u.id = q.user_id").
		Where(squirrel.Eq{"q.id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var q models.Question
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&q.ID, &q.Message, &q.Status, &q.UserID, &q.Username, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &q, nil
}

// List returns questions ordered escalated-first, then newest-first.
func (r *QuestionRepository) List(ctx context.Context, offset, limit uint64) ([]*models.Question, error) {
	query := squirrel.Select("q.id", "q.message", "q.status", "q.user_id", "u.username", "q.created_at", "q.updated_at").
		From("questions q").
		Join("users u ON u.id = q.user_id").
		OrderBy("(q.status = 'Escalated') DESC", "q.created_at DESC").
		Offset(offset).
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Message, &q.Status, &q.UserID, &q.Username, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, &q)
	}

	return questions, rows.Err()
}

// ListAnswered returns answered questions that have at least one answer,
// for the bulk knowledge import job.
func (r *QuestionRepository) ListAnswered(ctx context.Context) ([]*models.Question, error) {
	query := squirrel.Select("q.id", "q.message", "q.status", "q.user_id", "u.username", "q.created_at", "q.updated_at").
		From("questions q").
		Join("users u ON u.id = q.user_id").
		Where(squirrel.Eq{"q.status": models.StatusAnswered}).
		Where("EXISTS (SELECT 1 FROM answers a WHERE a.question_id = q.id)").
		OrderBy("q.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Message, &q.Status, &q.UserID, &q.Username, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, &q)
	}

	return questions, rows.Err()
}

func (r *QuestionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.QuestionStatus) (int64, error) {
	query := squirrel.Update("questions").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
