package interview

import (
	"context"
	"time"

	"mockinterview/ai/internal/models"
)

// Store persists sessions. Get returns ErrSessionNotFound for unknown ids and
// Update returns ErrVersionConflict when the stored Version differs from the
// one passed in; on success Update increments the session's Version.
type Store interface {
	Create(ctx context.Context, session *models.InterviewSession) error
	Get(ctx context.Context, id string) (*models.InterviewSession, error)
	Update(ctx context.Context, session *models.InterviewSession) error
	// newest first
	ListByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error)
	ListCompletedByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error)
	// in-progress sessions not updated since before
	ListStale(ctx context.Context, before time.Time) ([]models.InterviewSession, error)
	MarkAbandoned(ctx context.Context, id string) error
}

// CompletedEvent is announced once a session receives its evaluation.
type CompletedEvent struct {
	SessionID     string               `json:"sessionId"`
	OwnerID       string               `json:"ownerId"`
	Role          models.Role          `json:"role"`
	Difficulty    models.Difficulty    `json:"difficulty"`
	InterviewType models.InterviewType `json:"interviewType"`
	Score         int                  `json:"score"`
	Provider      string               `json:"provider"`
	Questions     int                  `json:"questions"`
	CompletedAt   time.Time            `json:"completedAt"`
}

type Publisher interface {
	PublishCompleted(ctx context.Context, event CompletedEvent) error
}
