package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/models"
)

// MemoryRepository keeps sessions in process memory. Callers always receive copies.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.InterviewSession
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]*models.InterviewSession)}
}

func copySession(s *models.InterviewSession) *models.InterviewSession {
	c := *s
	c.Questions = append([]models.Question(nil), s.Questions...)
	c.Answers = append([]models.Answer(nil), s.Answers...)
	c.Transcript = append([]models.TranscriptEntry(nil), s.Transcript...)
	if s.Evaluation != nil {
		eval := *s.Evaluation
		eval.Strengths = append([]string(nil), s.Evaluation.Strengths...)
		eval.Weaknesses = append([]string(nil), s.Evaluation.Weaknesses...)
		eval.MissedTopics = append([]string(nil), s.Evaluation.MissedTopics...)
		eval.Suggestions = append([]string(nil), s.Evaluation.Suggestions...)
		c.Evaluation = &eval
	}
	if s.Score != nil {
		score := *s.Score
		c.Score = &score
	}
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, session *models.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.Version == 0 {
		session.Version = 1
	}
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.InterviewSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, interview.ErrSessionNotFound
	}
	return copySession(s), nil
}

func (r *MemoryRepository) Update(_ context.Context, session *models.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[session.ID]
	if !ok {
		return interview.ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return interview.ErrVersionConflict
	}
	session.Version++
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *MemoryRepository) filter(keep func(*models.InterviewSession) bool) []models.InterviewSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.InterviewSession{}
	for _, s := range r.sessions {
		if keep(s) {
			out = append(out, *copySession(s))
		}
	}
	return out
}

func newestFirst(sessions []models.InterviewSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]models.InterviewSession, error) {
	out := r.filter(func(s *models.InterviewSession) bool { return s.OwnerID == ownerID })
	newestFirst(out)
	return out, nil
}

func (r *MemoryRepository) ListCompletedByOwner(_ context.Context, ownerID string) ([]models.InterviewSession, error) {
	out := r.filter(func(s *models.InterviewSession) bool {
		return s.OwnerID == ownerID && s.Status == models.StatusCompleted
	})
	newestFirst(out)
	return out, nil
}

func (r *MemoryRepository) ListStale(_ context.Context, before time.Time) ([]models.InterviewSession, error) {
	out := r.filter(func(s *models.InterviewSession) bool {
		return s.Status == models.StatusInProgress && s.UpdatedAt.Before(before)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryRepository) MarkAbandoned(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return interview.ErrSessionNotFound
	}
	if s.Status != models.StatusInProgress {
		return interview.ErrVersionConflict
	}
	s.Status = models.StatusAbandoned
	s.Version++
	s.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) ListUnexported(_ context.Context, limit int) ([]models.InterviewSession, error) {
	out := r.filter(func(s *models.InterviewSession) bool {
		return s.Status == models.StatusCompleted && s.ExportedAt == nil
	})
	sort.SliceStable(out, func(i, j int) bool { return completedAt(out[i]).Before(completedAt(out[j])) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) MarkExported(_ context.Context, ids []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if s, ok := r.sessions[id]; ok {
			exported := at
			s.ExportedAt = &exported
		}
	}
	return nil
}

func completedAt(s models.InterviewSession) time.Time {
	if s.CompletedAt == nil {
		return time.Time{}
	}
	return *s.CompletedAt
}
