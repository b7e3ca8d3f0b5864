package service

import "errors"

var (
	// ErrEmptyInput is returned when text is empty after whitespace
	// normalization.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrInvalidIdentifier is returned when a supplied id does not parse as
	// a UUID.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidArgument marks a contract violation recognized before any
	// side effect, such as a delete call with zero or multiple selectors.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreUnavailable wraps storage backend failures. Not retried here;
	// retry policy belongs to the caller.
	ErrStoreUnavailable = errors.New("knowledge store unavailable")

	// ErrOracleUnavailable wraps failures of the external language model
	// endpoints (generation, classification, embedding).
	ErrOracleUnavailable = errors.New("model oracle unavailable")

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrQuestionNotFound   = errors.New("question not found")

	// ErrContentRejected is returned when moderation decides the submitted
	// text must not be persisted.
	ErrContentRejected = errors.New("content rejected by moderation")
)
