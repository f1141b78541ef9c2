package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/models"
)

// SessionRepository stores interview sessions through gorm.
type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) (*SessionRepository, error) {
	if err := db.AutoMigrate(&models.InterviewSession{}); err != nil {
		return nil, fmt.Errorf("migrate interview sessions: %w", err)
	}
	return &SessionRepository{DB: db}, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.InterviewSession) error {
	if session.Version == 0 {
		session.Version = 1
	}
	return r.DB.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interview.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Update writes the whole session if nobody else updated it since it was read.
func (r *SessionRepository) Update(ctx context.Context, session *models.InterviewSession) error {
	expected := session.Version
	session.Version = expected + 1

	result := r.DB.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("id = ? AND version = ?", session.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(session)
	if result.Error != nil {
		session.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		session.Version = expected
		var count int64
		if err := r.DB.WithContext(ctx).Model(&models.InterviewSession{}).Where("id = ?", session.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return interview.ErrSessionNotFound
		}
		return interview.ErrVersionConflict
	}
	return nil
}

func (r *SessionRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error) {
	sessions := []models.InterviewSession{}
	err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) ListCompletedByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error) {
	sessions := []models.InterviewSession{}
	err := r.DB.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, models.StatusCompleted).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) ListStale(ctx context.Context, before time.Time) ([]models.InterviewSession, error) {
	sessions := []models.InterviewSession{}
	err := r.DB.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.StatusInProgress, before).
		Order("updated_at ASC").
		Find(&sessions).Error
	return sessions, err
}

// MarkAbandoned only touches sessions that are still in progress.
func (r *SessionRepository) MarkAbandoned(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("id = ? AND status = ?", id, models.StatusInProgress).
		Updates(map[string]interface{}{
			"status":     models.StatusAbandoned,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return interview.ErrVersionConflict
	}
	return nil
}

// ListUnexported returns completed sessions not yet handed to the transcript exporter.
func (r *SessionRepository) ListUnexported(ctx context.Context, limit int) ([]models.InterviewSession, error) {
	sessions := []models.InterviewSession{}
	err := r.DB.WithContext(ctx).
		Where("status = ? AND exported_at IS NULL", models.StatusCompleted).
		Order("completed_at ASC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) MarkExported(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("id IN ?", ids).
		Update("exported_at", at).Error
}
