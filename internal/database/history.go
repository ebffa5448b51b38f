package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"brand-video-backend/internal/models"
)

const writeTimeout = 5 * time.Second

// historyMetadata holds the fields that only some rows carry.
type historyMetadata struct {
	VideoURL   string `json:"video_url,omitempty"`
	StorageURL string `json:"storage_url,omitempty"`
}

// HistoryWriter appends one row per job change. The table is an audit log;
// live status is always read from the in-memory tracker.
type HistoryWriter struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewHistoryWriter(db *sql.DB, log zerolog.Logger) *HistoryWriter {
	return &HistoryWriter{db: db, log: log.With().Str("component", "job_history").Logger()}
}

func (h *HistoryWriter) Record(ctx context.Context, job models.Job) error {
	metadata, err := json.Marshal(historyMetadata{VideoURL: job.VideoURL, StorageURL: job.StorageURL})
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	recordedAt := job.UpdatedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO video_job_history (job_id, status, progress, message, metadata, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, job.ID, string(job.Status), job.Progress, job.Message, metadata, recordedAt)
	if err != nil {
		return fmt.Errorf("failed to record history for job %s: %w", job.ID, err)
	}
	return nil
}

// JobChanged implements jobs.Observer.
func (h *HistoryWriter) JobChanged(job models.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := h.Record(ctx, job); err != nil {
		h.log.Warn().Err(err).Msg("Job history not recorded")
	}
}
