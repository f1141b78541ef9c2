package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"mockinterview/ai/internal/models"
)

// upper bound on batches per run
const maxExportBatches = 100

// TranscriptSource is implemented by every session repository.
type TranscriptSource interface {
	ListUnexported(ctx context.Context, limit int) ([]models.InterviewSession, error)
	MarkExported(ctx context.Context, ids []string, at time.Time) error
}

type ExporterConfig struct {
	ExportDir string
	BatchSize int
}

// TranscriptExporterJob writes completed interviews as JSONL files for
// offline review and marks them exported.
type TranscriptExporterJob struct {
	source TranscriptSource
	config ExporterConfig
	logger *zap.Logger
	stages StageCounter
	now    func() time.Time
}

func NewTranscriptExporterJob(source TranscriptSource, config ExporterConfig, logger *zap.Logger, stages StageCounter) *TranscriptExporterJob {
	if config.BatchSize <= 0 {
		config.BatchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if stages == nil {
		stages = nopStages{}
	}
	return &TranscriptExporterJob{
		source: source,
		config: config,
		logger: logger,
		stages: stages,
		now:    time.Now,
	}
}

func (j *TranscriptExporterJob) Name() string { return "transcript_export" }

// Run exports every unexported completed session, one file per batch.
func (j *TranscriptExporterJob) Run(ctx context.Context) error {
	total := 0
	for batch := 1; batch <= maxExportBatches; batch++ {
		sessions, err := j.source.ListUnexported(ctx, j.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to list unexported sessions: %w", err)
		}
		if len(sessions) == 0 {
			break
		}

		path, err := j.writeBatch(sessions, batch)
		if err != nil {
			return err
		}

		ids := make([]string, len(sessions))
		for i := range sessions {
			ids[i] = sessions[i].ID
		}
		if err := j.source.MarkExported(ctx, ids, j.now()); err != nil {
			return fmt.Errorf("failed to mark sessions exported: %w", err)
		}

		total += len(sessions)
		j.stages.SessionStage("exported", len(sessions))
		j.logger.Info("Exported interview transcripts",
			zap.String("file", path),
			zap.Int("count", len(sessions)))

		if len(sessions) < j.config.BatchSize {
			break
		}
	}

	if total == 0 {
		j.logger.Debug("No completed interviews to export")
	}
	return nil
}

func (j *TranscriptExporterJob) writeBatch(sessions []models.InterviewSession, batch int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range sessions {
		if err := enc.Encode(models.NewTranscriptExport(&sessions[i])); err != nil {
			return "", fmt.Errorf("failed to encode session %s: %w", sessions[i].ID, err)
		}
	}

	if err := os.MkdirAll(j.config.ExportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("transcripts_%s_%03d.jsonl", j.now().Format("20060102_150405"), batch)
	path := filepath.Join(j.config.ExportDir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
