package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background maintenance run on a cron schedule.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// StageCounter receives lifecycle counts, normally the service metrics.
type StageCounter interface {
	SessionStage(stage string, n int)
}

type nopStages struct{}

func (nopStages) SessionStage(string, int) {}

// Scheduler runs jobs on one cron instance. Overlapping runs of the same job
// are skipped and panics are recovered.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	cronLogger := zapCronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:  logger,
		timeout: timeout,
	}
}

// Schedule registers job under a standard five-field spec or a descriptor such as "@every 10m".
func (s *Scheduler) Schedule(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.logger.Error("Scheduled job failed", zap.String("job", job.Name()), zap.Error(err))
			return
		}
		s.logger.Debug("Scheduled job finished",
			zap.String("job", job.Name()),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s job: %w", job.Name(), err)
	}
	s.logger.Info("Scheduled job", zap.String("job", job.Name()), zap.String("schedule", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stopped before running jobs finished")
	}
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
