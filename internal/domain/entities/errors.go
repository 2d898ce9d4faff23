package entities

import "errors"

var (
	ErrSessionNotFound    = errors.New("quiz session not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrVersionConflict    = errors.New("quiz session was modified by another process")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
