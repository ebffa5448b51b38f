package jobs

import (
	"context"

	"github.com/rs/zerolog"

	"brand-video-backend/internal/models"
)

// AsyncObserver hands job changes to a slow observer on its own goroutine so
// network writes never hold up a pipeline worker. Changes are delivered in
// order; when the buffer is full new changes are dropped and logged.
type AsyncObserver struct {
	name   string
	target Observer
	events chan models.Job
	log    zerolog.Logger
}

func NewAsyncObserver(name string, target Observer, buffer int, log zerolog.Logger) *AsyncObserver {
	if buffer < 1 {
		buffer = 1
	}
	return &AsyncObserver{
		name:   name,
		target: target,
		events: make(chan models.Job, buffer),
		log:    log.With().Str("observer", name).Logger(),
	}
}

func (a *AsyncObserver) JobChanged(job models.Job) {
	select {
	case a.events <- job:
	default:
		a.log.Warn().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("Observer buffer full, dropping job change")
	}
}

// Serve delivers buffered changes until ctx is cancelled, then drains what is
// already queued.
func (a *AsyncObserver) Serve(ctx context.Context) error {
	for {
		select {
		case job := <-a.events:
			a.deliver(job)
		case <-ctx.Done():
			for {
				select {
				case job := <-a.events:
					a.deliver(job)
				default:
					return ctx.Err()
				}
			}
		}
	}
}

func (a *AsyncObserver) String() string { return a.name }

func (a *AsyncObserver) deliver(job models.Job) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Str("job_id", job.ID).Msg("Observer panicked")
		}
	}()
	a.target.JobChanged(job)
}
