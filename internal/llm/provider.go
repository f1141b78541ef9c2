package llm

import (
	"context"
	"errors"
	"net/http"

	"mockinterview/ai/internal/models"
)

// defines the interface for completion providers
type Provider interface {
	GenerateQuestion(ctx context.Context, req QuestionRequest) (string, error)
	EvaluateTranscript(ctx context.Context, req EvaluationRequest) (*models.Evaluation, error)
	GetProviderName() string
}

// QuestionRequest carries the prompts for one question plus the session
// configuration, so that a table-driven provider can answer without them.
type QuestionRequest struct {
	Role           models.Role
	Difficulty     models.Difficulty
	InterviewType  models.InterviewType
	QuestionNumber int
	SystemPrompt   string
	UserPrompt     string
}

type EvaluationRequest struct {
	Role          models.Role
	Difficulty    models.Difficulty
	InterviewType models.InterviewType
	SystemPrompt  string
	Prompt        string
	Answers       []string
}

// represents an error from a completion provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeAPIKey          = "invalid_api_key"
	ErrCodeRateLimit       = "rate_limit_exceeded"
	ErrCodeServiceDown     = "service_unavailable"
	ErrCodeInvalidInput    = "invalid_input"
	ErrCodeTimeout         = "timeout"
	ErrCodeInvalidResponse = "invalid_response"
)

// ErrMissingCredential is returned by remote factories when no usable key is configured.
var ErrMissingCredential = errors.New("no credential configured")

// CodeForStatus maps an HTTP status from a remote API onto an error code.
func CodeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrCodeAPIKey
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrCodeTimeout
	case status >= 400 && status < 500:
		return ErrCodeInvalidInput
	default:
		return ErrCodeServiceDown
	}
}

// HasCode reports whether err wraps a ProviderError with the given code.
func HasCode(err error, code string) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr) && provErr.Code == code
}

// contextCode classifies a context error.
func contextCode(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return ErrCodeTimeout
	}
	return ErrCodeServiceDown
}

// WrapContextError converts a cancellation or deadline into a ProviderError.
func WrapContextError(provider string, err error) error {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return err
	}
	return &ProviderError{
		Provider: provider,
		Code:     contextCode(err),
		Message:  "request did not complete",
		Err:      err,
	}
}
