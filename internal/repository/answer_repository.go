package repository

import (
	"context"

	"askhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AnswerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAnswerRepository(db *pgxpool.Pool, logger *zap.Logger) *AnswerRepository {
	return &AnswerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AnswerRepository) Create(ctx context.Context, answer *models.Answer) error {
	query := squirrel.Insert("answers").
		Columns("id", "question_id", "message", "user_id", "created_at").
		Values(answer.ID, answer.QuestionID, answer.Message, answer.UserID, answer.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListByQuestion returns a question's answers ordered oldest-first.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.Answer, error) {
	query := squirrel.Select("a.id", "a.question_id", "a.message", "a.user_id", "u.username", "a.created_at").
		From("answers a").
		Join("users u ON u.id = a.user_id").
		Where(squirrel.Eq{"a.question_id": questionID}).
		OrderBy("a.created_at ASC").
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

	var answers []*models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Message, &a.UserID, &a.Username, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, &a)
	}

	return answers, rows.Err()
}
