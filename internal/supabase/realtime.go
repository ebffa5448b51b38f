package supabase

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/supabase-community/supabase-go"

	"brand-video-backend/internal/models"
)

// JobEvent is one row of the events table. Supabase Realtime broadcasts
// inserts on it to subscribed browsers.
type JobEvent struct {
	JobID      string    `json:"job_id"`
	Event      string    `json:"event"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	Message    string    `json:"message"`
	VideoURL   string    `json:"video_url,omitempty"`
	StorageURL string    `json:"storage_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RealtimeClient publishes job changes by inserting into the events table.
type RealtimeClient struct {
	client  *supabase.Client
	table   string
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
}

func NewRealtimeClient(client *supabase.Client, table string, log zerolog.Logger) *RealtimeClient {
	return &RealtimeClient{
		client:  client,
		table:   table,
		breaker: newBreaker[[]byte]("supabase-realtime", log),
		log:     log.With().Str("component", "supabase_realtime").Logger(),
	}
}

func (r *RealtimeClient) PublishEvent(event JobEvent) error {
	_, err := r.breaker.Execute(func() ([]byte, error) {
		body, _, err := r.client.From(r.table).Insert(event, false, "", "minimal", "").Execute()
		return body, err
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event for job %s: %w", event.Event, event.JobID, err)
	}
	return nil
}

// JobChanged implements jobs.Observer.
func (r *RealtimeClient) JobChanged(job models.Job) {
	if err := r.PublishEvent(EventFromJob(job)); err != nil {
		r.log.Warn().Err(err).Msg("Job event not published")
	}
}

// EventFromJob names the change: started, progress, completed or failed.
func EventFromJob(job models.Job) JobEvent {
	event := "progress"
	switch {
	case job.Status == models.JobStatusCompleted:
		event = "completed"
	case job.Status == models.JobStatusFailed:
		event = "failed"
	case job.Progress == 0:
		event = "started"
	}
	return JobEvent{
		JobID:      job.ID,
		Event:      event,
		Status:     string(job.Status),
		Progress:   job.Progress,
		Message:    job.Message,
		VideoURL:   job.VideoURL,
		StorageURL: job.StorageURL,
		CreatedAt:  job.UpdatedAt,
	}
}
