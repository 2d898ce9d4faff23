package service

import (
	"errors"
	"fmt"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

// Kind classifies engine failures for the delivery layers.
type Kind string

const (
	KindValidation              Kind = "validation"
	KindDuplicateResponse       Kind = "duplicate_response"
	KindUnknownQuestion         Kind = "unknown_question"
	KindEmptyResponses          Kind = "empty_responses"
	KindNotFound                Kind = "not_found"
	KindSessionAlreadyCompleted Kind = "session_already_completed"
	KindConcurrentModification  Kind = "concurrent_modification"
	KindPreconditionFailure     Kind = "precondition_failure"
	KindStorageUnavailable      Kind = "storage_unavailable"
	KindInternal                Kind = "internal"
)

// IsValidation reports whether the kind belongs to the malformed request family.
func (k Kind) IsValidation() bool {
	switch k {
	case KindValidation, KindDuplicateResponse, KindUnknownQuestion, KindEmptyResponses:
		return true
	}
	return false
}

// IsStateConflict reports whether the kind is a session state conflict.
func (k Kind) IsStateConflict() bool {
	return k == KindSessionAlreadyCompleted || k == KindConcurrentModification
}

// Retryable reports whether the caller may safely retry the operation.
func (k Kind) Retryable() bool {
	return k == KindStorageUnavailable
}

var (
	ErrNoQuestionsAvailable = errors.New("no eligible questions available")
	ErrShortQuiz            = errors.New("not enough eligible questions for the requested quiz")
	ErrEmptyResponses       = errors.New("no responses submitted")
	ErrDuplicateResponse    = errors.New("duplicate response for question")
	ErrQuestionNotInRound   = errors.New("question does not belong to the current round")
	ErrSessionCompleted     = errors.New("quiz session already completed")
	ErrSessionBusy          = errors.New("quiz session is being modified by another request")
	ErrStaleRound           = errors.New("submitted round is not the current round")
	ErrInvalidQuestionCount = errors.New("invalid question count")
	ErrInvalidUser          = errors.New("invalid user")
	ErrInvalidWord          = errors.New("invalid word")
)

// Error is the engine error carrying a Kind and the failing operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// wrap classifies err and returns it as an *Error, keeping an existing Kind.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return newError(KindOf(err), op, err)
}

// KindOf classifies any error produced by the engine or its storage.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, entities.ErrStorageUnavailable):
		return KindStorageUnavailable
	case errors.Is(err, entities.ErrSessionNotFound), errors.Is(err, entities.ErrQuestionNotFound):
		return KindNotFound
	case errors.Is(err, entities.ErrVersionConflict), errors.Is(err, ErrSessionBusy), errors.Is(err, ErrStaleRound):
		return KindConcurrentModification
	case errors.Is(err, ErrSessionCompleted):
		return KindSessionAlreadyCompleted
	case errors.Is(err, ErrDuplicateResponse):
		return KindDuplicateResponse
	case errors.Is(err, ErrQuestionNotInRound):
		return KindUnknownQuestion
	case errors.Is(err, ErrEmptyResponses):
		return KindEmptyResponses
	case errors.Is(err, ErrNoQuestionsAvailable), errors.Is(err, ErrShortQuiz):
		return KindPreconditionFailure
	case errors.Is(err, ErrInvalidQuestionCount), errors.Is(err, ErrInvalidUser), errors.Is(err, ErrInvalidWord):
		return KindValidation
	default:
		return KindInternal
	}
}
