package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"brand-video-backend/internal/jobs"
	"brand-video-backend/internal/metrics"
	"brand-video-backend/internal/models"
	"brand-video-backend/internal/render"
	"brand-video-backend/internal/script"
	"brand-video-backend/internal/visuals"
)

const (
	MessageScript    = "Generating script..."
	MessageVisuals   = "Creating visuals..."
	MessageRendering = "Composing video..."
	MessageCompleted = "Video generated successfully!"
	MessageFailed    = "Failed to generate video"

	// DownloadPath prefixes the download reference of a completed job.
	DownloadPath = "/api/download-video/"
)

var (
	ErrQueueFull    = errors.New("video generation queue is full")
	ErrShuttingDown = errors.New("video service is shutting down")
)

type VisualComposer interface {
	Compose(ctx context.Context, jobID string, brand models.BrandRequest, lines []models.ScriptLine) ([]models.VisualAsset, error)
}

type VideoRenderer interface {
	Render(ctx context.Context, jobID string, brand models.BrandRequest, lines []models.ScriptLine, assets []models.VisualAsset) (string, error)
}

type ArtifactStore interface {
	Exists(key string) bool
	Path(key string) (string, error)
}

// ArtifactMirror copies a finished video somewhere publicly reachable and
// returns its URL.
type ArtifactMirror interface {
	UploadVideo(ctx context.Context, key, path string) (string, error)
}

type VideoServiceOptions struct {
	Workers   int
	QueueSize int
	// Mirror is optional.
	Mirror ArtifactMirror
}

type task struct {
	id    string
	brand models.BrandRequest
}

// VideoService accepts generation requests and runs them on a fixed pool of
// workers, reporting progress through the job tracker.
type VideoService struct {
	tracker  *jobs.Tracker
	visuals  VisualComposer
	renderer VideoRenderer
	store    ArtifactStore
	mirror   ArtifactMirror
	compose  func(models.BrandRequest) []models.ScriptLine
	log      zerolog.Logger

	workers int
	slots   chan struct{}
	queue   chan task
	newID   func() string

	// submitMu orders Submit against Close so nothing is queued after Close.
	submitMu sync.Mutex
	closed   chan struct{}
	once     sync.Once
}

func NewVideoService(tracker *jobs.Tracker, vc VisualComposer, vr VideoRenderer, store ArtifactStore, opts VideoServiceOptions, log zerolog.Logger) *VideoService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	return &VideoService{
		tracker:  tracker,
		visuals:  vc,
		renderer: vr,
		store:    store,
		mirror:   opts.Mirror,
		compose:  script.Compose,
		log:      log.With().Str("component", "video_service").Logger(),
		workers:  opts.Workers,
		slots:    make(chan struct{}, opts.QueueSize),
		queue:    make(chan task, opts.QueueSize),
		closed:   make(chan struct{}),
		newID:    uuid.NewString,
	}
}

// Submit registers a new job for brand and queues it. The job id is returned
// immediately; a full queue is refused without creating a job.
func (s *VideoService) Submit(brand models.BrandRequest) (string, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	select {
	case <-s.closed:
		return "", ErrShuttingDown
	default:
	}

	select {
	case s.slots <- struct{}{}:
	default:
		metrics.JobsRejected.Inc()
		return "", ErrQueueFull
	}

	id := s.newID()
	if _, err := s.tracker.Create(id); err != nil {
		<-s.slots
		return "", fmt.Errorf("failed to register job: %w", err)
	}

	s.queue <- task{id: id, brand: brand}
	metrics.JobsSubmitted.Inc()
	s.log.Info().Str("job_id", id).Str("brand", brand.BrandName).Msg("Video job queued")
	return id, nil
}

// Status returns the tracker record for id.
func (s *VideoService) Status(id string) models.Job {
	return s.tracker.Get(id)
}

// ArtifactPath returns the finished video of id. Only completed jobs have
// one; an artifact stored before the completed update is not yet visible.
func (s *VideoService) ArtifactPath(id string) (string, bool) {
	if s.tracker.Get(id).Status != models.JobStatusCompleted {
		return "", false
	}
	return s.storedArtifact(id)
}

func (s *VideoService) storedArtifact(id string) (string, bool) {
	key := render.ArtifactKey(id)
	if !s.store.Exists(key) {
		return "", false
	}
	p, err := s.store.Path(key)
	if err != nil {
		return "", false
	}
	return p, true
}

// Close stops Submit from accepting work. Once it returns no further job
// can be queued.
func (s *VideoService) Close() {
	s.once.Do(func() {
		s.submitMu.Lock()
		close(s.closed)
		s.submitMu.Unlock()
	})
}

// Serve runs the worker pool until ctx is cancelled. Jobs already picked up
// by a worker run to completion. Then submissions are closed and jobs still
// waiting in the queue are failed, so none is left processing.
func (s *VideoService) Serve(ctx context.Context) error {
	s.log.Info().Int("workers", s.workers).Int("queue_size", cap(s.queue)).Msg("Video workers starting")

	var wg sync.WaitGroup
	for i := range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.work(ctx, i)
		}()
	}
	wg.Wait()

	s.Close()
	if n := s.drain(); n > 0 {
		s.log.Warn().Int("jobs", n).Msg("Queued video jobs failed at shutdown")
	}

	s.log.Info().Msg("Video workers stopped")
	return ctx.Err()
}

// drain fails every job still queued. Call only after Close.
func (s *VideoService) drain() int {
	n := 0
	for {
		select {
		case t := <-s.queue:
			<-s.slots
			s.fail(s.log.With().Str("job_id", t.id).Logger(), t.id, ErrShuttingDown)
			n++
		default:
			return n
		}
	}
}

func (s *VideoService) String() string { return "video-workers" }

func (s *VideoService) work(ctx context.Context, worker int) {
	jobCtx := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case t := <-s.queue:
			<-s.slots
			s.run(jobCtx, worker, t)
		}
	}
}

func (s *VideoService) run(ctx context.Context, worker int, t task) {
	log := s.log.With().Str("job_id", t.id).Int("worker", worker).Logger()
	start := time.Now()

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Video job panicked")
			s.fail(log, t.id, fmt.Errorf("%v", r))
		}
	}()

	if err := s.generate(ctx, log, t); err != nil {
		log.Error().Err(err).Msg("Video job failed")
		s.fail(log, t.id, err)
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("Video job finished")
}

func (s *VideoService) generate(ctx context.Context, log zerolog.Logger, t task) error {
	if err := s.update(t.id, 0, jobs.MessageStarting); err != nil {
		return err
	}

	if err := s.update(t.id, 20, MessageScript); err != nil {
		return err
	}
	stageStart := time.Now()
	lines := s.compose(t.brand)
	metrics.RecordStage("script", time.Since(stageStart))
	log.Debug().Int("lines", len(lines)).Msg("Script composed")

	if err := s.update(t.id, 40, MessageVisuals); err != nil {
		return err
	}
	stageStart = time.Now()
	assets, err := s.visuals.Compose(ctx, t.id, t.brand, lines)
	metrics.RecordStage("visuals", time.Since(stageStart))
	if err != nil {
		return err
	}

	renderErr, err := s.render(ctx, log, t, lines, assets)
	if err != nil {
		return err
	}
	if renderErr != nil {
		log.Error().Err(renderErr).Msg("Rendering failed")
	}

	artifact, ok := s.storedArtifact(t.id)
	if renderErr != nil || !ok {
		_, err := s.tracker.Update(t.id, 100, MessageFailed, jobs.WithStatus(models.JobStatusFailed))
		return ignoreFinalized(err)
	}

	opts := []jobs.UpdateOption{
		jobs.WithStatus(models.JobStatusCompleted),
		jobs.WithVideoURL(DownloadPath + t.id),
	}
	if url := s.mirrorArtifact(ctx, log, t.id, artifact); url != "" {
		opts = append(opts, jobs.WithStorageURL(url))
	}

	_, err = s.tracker.Update(t.id, 100, MessageCompleted, opts...)
	return ignoreFinalized(err)
}

// render runs the rendering stage. The stills are removed when it returns,
// whatever the outcome, panics included. A renderer failure is returned as
// renderErr; err reports a tracker failure.
func (s *VideoService) render(ctx context.Context, log zerolog.Logger, t task, lines []models.ScriptLine, assets []models.VisualAsset) (renderErr, err error) {
	defer func() {
		if cerr := visuals.Cleanup(assets); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to remove stills")
		}
	}()

	if err := s.update(t.id, 70, MessageRendering); err != nil {
		return nil, err
	}
	start := time.Now()
	_, renderErr = s.renderer.Render(ctx, t.id, t.brand, lines, assets)
	metrics.RecordStage("render", time.Since(start))
	return renderErr, nil
}

func (s *VideoService) mirrorArtifact(ctx context.Context, log zerolog.Logger, id, path string) string {
	if s.mirror == nil {
		return ""
	}
	url, err := s.mirror.UploadVideo(ctx, render.ArtifactKey(id), path)
	metrics.RecordMirrorUpload(err)
	if err != nil {
		log.Warn().Err(err).Msg("Artifact mirror upload failed")
		return ""
	}
	return url
}

func (s *VideoService) update(id string, progress int, message string) error {
	_, err := s.tracker.Update(id, progress, message)
	return err
}

// fail records err as the terminal message unless the job already finished.
func (s *VideoService) fail(log zerolog.Logger, id string, err error) {
	_, uerr := s.tracker.Update(id, 100, "Error: "+err.Error(), jobs.WithStatus(models.JobStatusFailed))
	if uerr != nil && !errors.Is(uerr, jobs.ErrJobFinalized) {
		log.Error().Err(uerr).Msg("Failed to record job failure")
	}
}

func ignoreFinalized(err error) error {
	if errors.Is(err, jobs.ErrJobFinalized) {
		return nil
	}
	return err
}
