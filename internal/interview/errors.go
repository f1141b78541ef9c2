package interview

import (
	"errors"
	"fmt"

	"mockinterview/ai/internal/llm"
)

var (
	ErrSessionNotFound         = errors.New("interview session not found")
	ErrNotOwner                = errors.New("interview session belongs to another user")
	ErrSessionAlreadyCompleted = errors.New("interview session already completed")
	ErrSessionAbandoned        = errors.New("interview session was abandoned")
	ErrAnswerAlreadyRecorded   = errors.New("current question already answered")
	ErrNothingPending          = errors.New("no pending step to resume")
	ErrVersionConflict         = errors.New("interview session was modified concurrently")
)

// ValidationError rejects a caller-supplied value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// QuestionGenerationError means no question could be produced for QuestionNumber.
type QuestionGenerationError struct {
	SessionID      string
	QuestionNumber int
	Err            error
}

func (e *QuestionGenerationError) Error() string {
	return fmt.Sprintf("failed to generate question %d: %v", e.QuestionNumber, e.Err)
}

func (e *QuestionGenerationError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline.
func (e *QuestionGenerationError) Timeout() bool { return isTimeout(e.Err) }

// EvaluationError means the final evaluation failed. The session stays in
// progress with its last answer kept, so the step can be resumed.
type EvaluationError struct {
	SessionID string
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate interview: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

func (e *EvaluationError) Timeout() bool { return isTimeout(e.Err) }

func isTimeout(err error) bool {
	return errors.Is(err, llm.ErrTimeout) || llm.HasCode(err, llm.ErrCodeTimeout)
}
