package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/models"
)

// StaleSource lists idle sessions and retires them.
type StaleSource interface {
	ListStale(ctx context.Context, before time.Time) ([]models.InterviewSession, error)
	MarkAbandoned(ctx context.Context, id string) error
}

// AbandonSweeperJob marks in-progress sessions idle for longer than After as abandoned.
type AbandonSweeperJob struct {
	store  StaleSource
	after  time.Duration
	logger *zap.Logger
	stages StageCounter
	now    func() time.Time
}

func NewAbandonSweeperJob(store StaleSource, after time.Duration, logger *zap.Logger, stages StageCounter) *AbandonSweeperJob {
	if after <= 0 {
		after = 2 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if stages == nil {
		stages = nopStages{}
	}
	return &AbandonSweeperJob{
		store:  store,
		after:  after,
		logger: logger,
		stages: stages,
		now:    time.Now,
	}
}

func (j *AbandonSweeperJob) Name() string { return "abandon_sweep" }

func (j *AbandonSweeperJob) Run(ctx context.Context) error {
	_, err := j.Sweep(ctx)
	return err
}

// Sweep returns how many sessions were abandoned. Sessions that moved on
// between listing and marking are skipped.
func (j *AbandonSweeperJob) Sweep(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.after)
	stale, err := j.store.ListStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	abandoned := 0
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return abandoned, err
		}
		err := j.store.MarkAbandoned(ctx, stale[i].ID)
		switch {
		case err == nil:
			abandoned++
			j.logger.Info("Abandoned idle interview",
				zap.String("session_id", stale[i].ID),
				zap.String("owner_id", stale[i].OwnerID),
				zap.Time("last_activity", stale[i].UpdatedAt))
		case errors.Is(err, interview.ErrVersionConflict), errors.Is(err, interview.ErrSessionNotFound):
			continue
		default:
			return abandoned, fmt.Errorf("failed to abandon session %s: %w", stale[i].ID, err)
		}
	}

	if abandoned > 0 {
		j.stages.SessionStage("abandoned", abandoned)
	}
	return abandoned, nil
}
