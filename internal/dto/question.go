package dto

import (
	"time"

	"askhub/internal/models"
)

type CreateQuestionRequest struct {
	Message string `json:"message"`
}

type CreateAnswerRequest struct {
	Message string `json:"message"`
}

type AnswerResponse struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	Message    string    `json:"message"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Timestamp  time.Time `json:"timestamp"`
}

type QuestionResponse struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Status    string           `json:"status"`
	UserID    string           `json:"userId"`
	Username  string           `json:"username"`
	Timestamp time.Time        `json:"timestamp"`
	Answers   []AnswerResponse `json:"answers"`
}

// AnswerCreatedPayload is the websocket payload broadcast when an answer
// commits.
type AnswerCreatedPayload struct {
	QuestionID string         `json:"questionId"`
	Answer     AnswerResponse `json:"answer"`
}

// QuestionAnsweredPayload is the websocket payload broadcast when a question
// is marked answered.
type QuestionAnsweredPayload struct {
	QuestionID string `json:"questionId"`
}

func AnswerToResponse(a *models.Answer) AnswerResponse {
	return AnswerResponse{
		ID:         a.ID.String(),
		QuestionID: a.QuestionID.String(),
		Message:    a.Message,
		UserID:     a.UserID.String(),
		Username:   a.Username,
		Timestamp:  a.CreatedAt,
	}
}

func QuestionToResponse(q *models.Question) QuestionResponse {
	answers := make([]AnswerResponse, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, AnswerToResponse(a))
	}

	return QuestionResponse{
		ID:        q.ID.String(),
		Message:   q.Message,
		Status:    string(q.Status),
		UserID:    q.UserID.String(),
		Username:  q.Username,
		Timestamp: q.CreatedAt,
		Answers:   answers,
	}
}
