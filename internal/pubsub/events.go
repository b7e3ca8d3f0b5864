package pubsub

import "context"

const (
	// QuestionCreatedEvent fires after a question commit.
	QuestionCreatedEvent EventType = "question_created"
	// AnswerCreatedEvent fires after an answer commit.
	AnswerCreatedEvent EventType = "answer_created"
	// QuestionAnsweredEvent fires when a question is marked answered.
	QuestionAnsweredEvent EventType = "question_answered"
)

type (
	// EventType identifies the kind of event.
	EventType string

	// Event carries one forum lifecycle notification.
	Event[T any] struct {
		Type    EventType `json:"type"`
		Payload T         `json:"data"`
	}

	// Subscriber exposes a read-only event channel that closes with its context.
	Subscriber[T any] interface {
		Subscribe(context.Context) <-chan Event[T]
	}

	// Publisher delivers an event to all active subscribers.
	Publisher[T any] interface {
		Publish(EventType, T)
	}
)
