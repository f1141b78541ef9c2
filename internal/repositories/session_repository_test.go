package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/models"
)

type sessionStore interface {
	interview.Store
	ListUnexported(ctx context.Context, limit int) ([]models.InterviewSession, error)
	MarkExported(ctx context.Context, ids []string, at time.Time) error
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return db
}

func newSQLRepo(t *testing.T) *SessionRepository {
	t.Helper()
	repo, err := NewSessionRepository(setupTestDB(t))
	if err != nil {
		t.Fatalf("NewSessionRepository returned error: %v", err)
	}
	return repo
}

func stores(t *testing.T) map[string]sessionStore {
	return map[string]sessionStore{
		"gorm":   newSQLRepo(t),
		"memory": NewMemoryRepository(),
	}
}

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newSession(id, owner string, created time.Time) *models.InterviewSession {
	return &models.InterviewSession{
		ID:                    id,
		OwnerID:               owner,
		Role:                  models.RoleBackend,
		Difficulty:            models.DifficultyBeginner,
		InterviewType:         models.InterviewTechnical,
		TotalQuestions:        5,
		CurrentQuestionNumber: 1,
		Questions:             []models.Question{{Text: "What is REST?", Number: 1, AskedAt: created, Context: "Initial question"}},
		Answers:               []models.Answer{},
		Transcript:            []models.TranscriptEntry{{Speaker: models.SpeakerInterviewer, Text: "What is REST?", Timestamp: created}},
		Status:                models.StatusInProgress,
		CreatedAt:             created,
		UpdatedAt:             created,
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newSession("s1", "alice", epoch)
			if err := store.Create(ctx, s); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			if s.Version != 1 {
				t.Fatalf("expected version 1, got %d", s.Version)
			}

			got, err := store.Get(ctx, "s1")
			if err != nil {
				t.Fatalf("Get returned error: %v", err)
			}
			if got.OwnerID != "alice" || len(got.Questions) != 1 || got.Questions[0].Context != "Initial question" {
				t.Fatalf("unexpected session %+v", got)
			}
			if got.Transcript[0].Speaker != models.SpeakerInterviewer {
				t.Fatalf("unexpected transcript %+v", got.Transcript)
			}

			if _, err := store.Get(ctx, "missing"); !errors.Is(err, interview.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestStoreUpdateVersioning(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Create(ctx, newSession("s1", "alice", epoch)); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			first, _ := store.Get(ctx, "s1")
			stale, _ := store.Get(ctx, "s1")

			first.Answers = append(first.Answers, models.Answer{Text: "An answer", Number: 1, SubmittedAt: epoch})
			first.Transcript = append(first.Transcript, models.TranscriptEntry{Speaker: models.SpeakerCandidate, Text: "An answer", Timestamp: epoch})
			first.UpdatedAt = epoch.Add(time.Minute)
			if err := store.Update(ctx, first); err != nil {
				t.Fatalf("Update returned error: %v", err)
			}
			if first.Version != 2 {
				t.Fatalf("expected version 2, got %d", first.Version)
			}

			stale.CurrentQuestionNumber = 3
			if err := store.Update(ctx, stale); !errors.Is(err, interview.ErrVersionConflict) {
				t.Fatalf("expected ErrVersionConflict, got %v", err)
			}
			if stale.Version != 1 {
				t.Fatalf("expected stale version untouched, got %d", stale.Version)
			}

			got, _ := store.Get(ctx, "s1")
			if len(got.Answers) != 1 || got.CurrentQuestionNumber != 1 || got.Version != 2 {
				t.Fatalf("unexpected stored session %+v", got)
			}

			missing := newSession("nope", "alice", epoch)
			missing.Version = 1
			if err := store.Update(ctx, missing); !errors.Is(err, interview.ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestStoreCompletedRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newSession("s1", "alice", epoch)
			store.Create(ctx, s)

			score := 72
			done := epoch.Add(time.Hour)
			s.Status = models.StatusCompleted
			s.Score = &score
			s.CompletedAt = &done
			s.Evaluation = &models.Evaluation{
				OverallScore:         72,
				Strengths:            []string{"clear"},
				Weaknesses:           []string{},
				MissedTopics:         []string{},
				Suggestions:          []string{"practice"},
				RoleSpecificFeedback: "ok",
				DetailedEvaluation:   "fine",
				Provider:             "fallback",
			}
			if err := store.Update(ctx, s); err != nil {
				t.Fatalf("Update returned error: %v", err)
			}

			got, _ := store.Get(ctx, "s1")
			if got.Evaluation == nil || got.Evaluation.Strengths[0] != "clear" || *got.Score != 72 {
				t.Fatalf("unexpected completed session %+v", got)
			}

			completed, err := store.ListCompletedByOwner(ctx, "alice")
			if err != nil || len(completed) != 1 {
				t.Fatalf("expected one completed session, got %d (%v)", len(completed), err)
			}
		})
	}
}

func TestStoreListByOwnerNewestFirst(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store.Create(ctx, newSession("old", "alice", epoch))
			store.Create(ctx, newSession("new", "alice", epoch.Add(time.Hour)))
			store.Create(ctx, newSession("other", "bob", epoch.Add(2*time.Hour)))

			list, err := store.ListByOwner(ctx, "alice")
			if err != nil {
				t.Fatalf("ListByOwner returned error: %v", err)
			}
			if len(list) != 2 || list[0].ID != "new" || list[1].ID != "old" {
				t.Fatalf("unexpected listing %+v", list)
			}
		})
	}
}

func TestStoreStaleAndAbandon(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store.Create(ctx, newSession("idle", "alice", epoch))
			store.Create(ctx, newSession("fresh", "alice", epoch.Add(2*time.Hour)))

			stale, err := store.ListStale(ctx, epoch.Add(time.Hour))
			if err != nil {
				t.Fatalf("ListStale returned error: %v", err)
			}
			if len(stale) != 1 || stale[0].ID != "idle" {
				t.Fatalf("unexpected stale sessions %+v", stale)
			}

			if err := store.MarkAbandoned(ctx, "idle"); err != nil {
				t.Fatalf("MarkAbandoned returned error: %v", err)
			}
			got, _ := store.Get(ctx, "idle")
			if got.Status != models.StatusAbandoned || got.Version != 2 {
				t.Fatalf("expected abandoned session at version 2, got %+v", got)
			}
			if err := store.MarkAbandoned(ctx, "idle"); err == nil {
				t.Fatal("expected second MarkAbandoned to fail")
			}
		})
	}
}

func TestStoreExportTracking(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 3; i++ {
				s := newSession(fmt.Sprintf("s%d", i), "alice", epoch)
				store.Create(ctx, s)
				done := epoch.Add(time.Duration(i) * time.Minute)
				score := 50
				s.Status = models.StatusCompleted
				s.CompletedAt = &done
				s.Score = &score
				s.Evaluation = &models.Evaluation{OverallScore: 50}
				if err := store.Update(ctx, s); err != nil {
					t.Fatalf("Update returned error: %v", err)
				}
			}
			store.Create(ctx, newSession("open", "alice", epoch))

			batch, err := store.ListUnexported(ctx, 2)
			if err != nil {
				t.Fatalf("ListUnexported returned error: %v", err)
			}
			if len(batch) != 2 || batch[0].ID != "s0" {
				t.Fatalf("unexpected batch %+v", batch)
			}
			if err := store.MarkExported(ctx, []string{batch[0].ID, batch[1].ID}, epoch.Add(time.Hour)); err != nil {
				t.Fatalf("MarkExported returned error: %v", err)
			}

			rest, _ := store.ListUnexported(ctx, 10)
			if len(rest) != 1 || rest[0].ID != "s2" {
				t.Fatalf("expected only s2 left, got %+v", rest)
			}
		})
	}
}
