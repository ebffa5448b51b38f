// Package jobs holds the in-memory record of every video generation job.
//
// Records live for the lifetime of the process; a restart forgets them. Each
// job id is written by exactly one pipeline worker, while any number of HTTP
// handlers read concurrently.
package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"brand-video-backend/internal/models"
)

const (
	MessageStarting = "Starting generation..."
	MessageNotFound = "Video ID not found"
)

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrJobExists          = errors.New("job already exists")
	ErrJobFinalized       = errors.New("job already finished")
	ErrProgressRegression = errors.New("progress cannot decrease")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// Observer is told about every successful write, after the tracker lock has
// been released. Observers must not call back into the tracker synchronously.
type Observer interface {
	JobChanged(job models.Job)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(job models.Job)

func (f ObserverFunc) JobChanged(job models.Job) { f(job) }

// Tracker maps job ids to their latest status.
type Tracker struct {
	mu        sync.RWMutex
	jobs      map[string]*models.Job
	observers []Observer
	now       func() time.Time
}

func NewTracker(observers ...Observer) *Tracker {
	return &Tracker{
		jobs:      make(map[string]*models.Job),
		observers: observers,
		now:       time.Now,
	}
}

// AddObserver registers o for future writes. Call during wiring, before jobs
// are submitted.
func (t *Tracker) AddObserver(o Observer) {
	t.mu.Lock()
	t.observers = append(t.observers, o)
	t.mu.Unlock()
}

// Create inserts the initial processing record for id.
func (t *Tracker) Create(id string) (models.Job, error) {
	now := t.now()

	t.mu.Lock()
	if _, exists := t.jobs[id]; exists {
		t.mu.Unlock()
		return models.Job{}, fmt.Errorf("%w: %s", ErrJobExists, id)
	}
	job := &models.Job{
		ID:        id,
		Status:    models.JobStatusProcessing,
		Progress:  0,
		Message:   MessageStarting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.jobs[id] = job
	snapshot := *job
	observers := t.observers
	t.mu.Unlock()

	t.notify(observers, snapshot)
	return snapshot, nil
}

// UpdateOption sets optional fields on an Update.
type UpdateOption func(*models.Job)

// WithStatus moves the job to a terminal status.
func WithStatus(status models.JobStatus) UpdateOption {
	return func(j *models.Job) { j.Status = status }
}

// WithVideoURL records the download reference of a completed job.
func WithVideoURL(url string) UpdateOption {
	return func(j *models.Job) { j.VideoURL = url }
}

// WithStorageURL records the public mirror URL of a completed job.
func WithStorageURL(url string) UpdateOption {
	return func(j *models.Job) { j.StorageURL = url }
}

// Update overwrites progress and message, plus whatever the options set.
// Status is left unchanged unless WithStatus is passed.
func (t *Tracker) Update(id string, progress int, message string, opts ...UpdateOption) (models.Job, error) {
	t.mu.Lock()
	current, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return models.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	next := *current
	next.Progress = progress
	next.Message = message
	for _, opt := range opts {
		opt(&next)
	}

	if err := checkTransition(*current, next); err != nil {
		t.mu.Unlock()
		return *current, fmt.Errorf("job %s: %w", id, err)
	}

	next.UpdatedAt = t.now()
	*current = next
	observers := t.observers
	t.mu.Unlock()

	t.notify(observers, next)
	return next, nil
}

func checkTransition(current, next models.Job) error {
	switch {
	case current.Status.IsTerminal():
		return ErrJobFinalized
	case next.Progress < current.Progress:
		return ErrProgressRegression
	case next.Progress > 100:
		return fmt.Errorf("%w: progress %d out of range", ErrInvalidTransition, next.Progress)
	case next.Status != models.JobStatusProcessing && !next.Status.IsTerminal():
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next.Status)
	case next.Status != models.JobStatusCompleted && (next.VideoURL != "" || next.StorageURL != ""):
		return fmt.Errorf("%w: download reference on %s job", ErrInvalidTransition, next.Status)
	}
	return nil
}

// Get returns a copy of the record for id, or a not_found record.
func (t *Tracker) Get(id string) models.Job {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return models.Job{Status: models.JobStatusNotFound, Message: MessageNotFound}
	}
	return *job
}

// Len returns the number of tracked jobs.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}

func (t *Tracker) notify(observers []Observer, job models.Job) {
	for _, o := range observers {
		o.JobChanged(job)
	}
}
