package jobs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/models"
	"mockinterview/ai/internal/repositories"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type stageRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (s *stageRecorder) SessionStage(stage string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int{}
	}
	s.counts[stage] += n
}

func newSQLRepo(t *testing.T) *repositories.SessionRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	repo, err := repositories.NewSessionRepository(db)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return repo
}

func seedSession(t *testing.T, store interview.Store, id string, updated time.Time, completed bool) {
	t.Helper()
	ctx := context.Background()
	s := &models.InterviewSession{
		ID:                    id,
		OwnerID:               "alice",
		Role:                  models.RoleBackend,
		Difficulty:            models.DifficultyBeginner,
		InterviewType:         models.InterviewTechnical,
		TotalQuestions:        1,
		CurrentQuestionNumber: 1,
		Questions:             []models.Question{{Text: "What is REST?", Number: 1, AskedAt: updated}},
		Answers:               []models.Answer{},
		Transcript:            []models.TranscriptEntry{},
		Status:                models.StatusInProgress,
		CreatedAt:             updated,
		UpdatedAt:             updated,
	}
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !completed {
		return
	}
	score := 70
	done := updated.Add(time.Minute)
	s.Answers = []models.Answer{{Text: "Resources over HTTP", Number: 1, SubmittedAt: done}}
	s.Status = models.StatusCompleted
	s.Score = &score
	s.CompletedAt = &done
	s.Evaluation = &models.Evaluation{OverallScore: 70, Strengths: []string{}, Weaknesses: []string{}, MissedTopics: []string{}, Suggestions: []string{}}
	if err := store.Update(ctx, s); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
}

func readLines(t *testing.T, path string) []models.TranscriptExport {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	var out []models.TranscriptExport
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line models.TranscriptExport
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		out = append(out, line)
	}
	return out
}

func TestTranscriptExport_NoData(t *testing.T) {
	exportDir := t.TempDir()
	job := NewTranscriptExporterJob(newSQLRepo(t), ExporterConfig{ExportDir: exportDir}, nil, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run with no data should not error, got %v", err)
	}
	files, _ := os.ReadDir(exportDir)
	if len(files) != 0 {
		t.Fatalf("expected no export files, got %d", len(files))
	}
}

func TestTranscriptExport_WritesBatchesAndMarks(t *testing.T) {
	repo := newSQLRepo(t)
	for i := 0; i < 3; i++ {
		seedSession(t, repo, fmt.Sprintf("done-%d", i), epoch.Add(time.Duration(i)*time.Minute), true)
	}
	seedSession(t, repo, "open", epoch, false)

	exportDir := t.TempDir()
	stages := &stageRecorder{}
	job := NewTranscriptExporterJob(repo, ExporterConfig{ExportDir: exportDir, BatchSize: 2}, nil, stages)
	job.now = func() time.Time { return epoch.Add(time.Hour) }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(exportDir, "transcripts_*.jsonl"))
	if err != nil || len(files) != 2 {
		t.Fatalf("expected two export files, got %v (%v)", files, err)
	}

	exported := 0
	for _, f := range files {
		for _, line := range readLines(t, f) {
			exported++
			if line.Score != 70 || len(line.Turns) != 1 || line.Turns[0].Answer != "Resources over HTTP" {
				t.Fatalf("unexpected exported line %+v", line)
			}
		}
	}
	if exported != 3 {
		t.Fatalf("expected 3 exported sessions, got %d", exported)
	}
	if stages.counts["exported"] != 3 {
		t.Fatalf("expected exported stage count 3, got %v", stages.counts)
	}

	rest, _ := repo.ListUnexported(context.Background(), 10)
	if len(rest) != 0 {
		t.Fatalf("expected everything marked exported, got %d left", len(rest))
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	files, _ = filepath.Glob(filepath.Join(exportDir, "transcripts_*.jsonl"))
	if len(files) != 2 {
		t.Fatalf("expected no new files on second run, got %d", len(files))
	}
}

func TestAbandonSweep(t *testing.T) {
	repo := repositories.NewMemoryRepository()
	seedSession(t, repo, "idle", epoch, false)
	seedSession(t, repo, "fresh", epoch.Add(3*time.Hour), false)
	seedSession(t, repo, "finished", epoch, true)

	stages := &stageRecorder{}
	job := NewAbandonSweeperJob(repo, 2*time.Hour, nil, stages)
	job.now = func() time.Time { return epoch.Add(4 * time.Hour) }

	n, err := job.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one abandoned session, got %d", n)
	}

	idle, _ := repo.Get(context.Background(), "idle")
	fresh, _ := repo.Get(context.Background(), "fresh")
	finished, _ := repo.Get(context.Background(), "finished")
	if idle.Status != models.StatusAbandoned || fresh.Status != models.StatusInProgress || finished.Status != models.StatusCompleted {
		t.Fatalf("unexpected statuses idle=%s fresh=%s finished=%s", idle.Status, fresh.Status, finished.Status)
	}
	if stages.counts["abandoned"] != 1 {
		t.Fatalf("expected abandoned stage count 1, got %v", stages.counts)
	}
}

type racingStore struct {
	stale []models.InterviewSession
	err   error
}

func (r *racingStore) ListStale(context.Context, time.Time) ([]models.InterviewSession, error) {
	return r.stale, nil
}

func (r *racingStore) MarkAbandoned(context.Context, string) error { return r.err }

func TestAbandonSweepSkipsSessionsThatMovedOn(t *testing.T) {
	store := &racingStore{
		stale: []models.InterviewSession{{ID: "s1"}, {ID: "s2"}},
		err:   interview.ErrVersionConflict,
	}
	n, err := NewAbandonSweeperJob(store, time.Hour, nil, nil).Sweep(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected silent skip, got %d (%v)", n, err)
	}

	store.err = errors.New("store offline")
	if _, err := NewAbandonSweeperJob(store, time.Hour, nil, nil).Sweep(context.Background()); err == nil {
		t.Fatal("expected store failure to surface")
	}
}

type countingJob struct {
	mu   sync.Mutex
	runs int
	done chan struct{}
}

func (c *countingJob) Name() string { return "counting" }

func (c *countingJob) Run(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
	if c.runs == 1 {
		close(c.done)
	}
	return nil
}

func TestSchedulerRunsJobs(t *testing.T) {
	scheduler := NewScheduler(nil, time.Second)
	job := &countingJob{done: make(chan struct{})}

	if err := scheduler.Schedule("@every 1s", job); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop(context.Background())

	select {
	case <-job.done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	scheduler := NewScheduler(nil, time.Second)
	if err := scheduler.Schedule("every tuesday", &countingJob{done: make(chan struct{})}); err == nil {
		t.Fatal("expected invalid cron spec to be rejected")
	}
}
