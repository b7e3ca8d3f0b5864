package models

import (
	"time"

	"github.com/google/uuid"
)

type QuestionStatus string

const (
	StatusPending   QuestionStatus = "Pending"
	StatusEscalated QuestionStatus = "Escalated"
	StatusAnswered  QuestionStatus = "Answered"
)

type Question struct {
	ID        uuid.UUID      `db:"id"`
	Message   string         `db:"message"`
	Status    QuestionStatus `db:"status"`
	UserID    uuid.UUID      `db:"user_id"`
	Username  string         `db:"-"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	Answers   []*Answer      `db:"-"`
}

type Answer struct {
	ID         uuid.UUID `db:"id"`
	QuestionID uuid.UUID `db:"question_id"`
	Message    string    `db:"message"`
	UserID     uuid.UUID `db:"user_id"`
	Username   string    `db:"-"`
	CreatedAt  time.Time `db:"created_at"`
}
