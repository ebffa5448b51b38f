// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the video pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"brand-video-backend/internal/models"
)

var (
	// API
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Pipeline
	JobsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_jobs_submitted_total",
			Help: "Total number of accepted video generation jobs",
		},
	)

	JobsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_jobs_rejected_total",
			Help: "Total number of submissions refused because the queue was full",
		},
	)

	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_jobs_finished_total",
			Help: "Total number of video jobs reaching a terminal status",
		},
		[]string{"status"},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_jobs_in_flight",
			Help: "Number of video jobs currently being processed by a worker",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	MirrorUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_mirror_uploads_total",
			Help: "Artifact mirror uploads by result",
		},
		[]string{"result"},
	)
)

func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	APIRequestDuration.WithLabelValues(method, endpoint, code).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
}

func RecordStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func RecordMirrorUpload(err error) {
	if err != nil {
		MirrorUploads.WithLabelValues("error").Inc()
		return
	}
	MirrorUploads.WithLabelValues("success").Inc()
}

// ObserveJob counts terminal transitions. It is registered as a job tracker
// observer.
func ObserveJob(job models.Job) {
	if job.Status.IsTerminal() {
		JobsFinished.WithLabelValues(string(job.Status)).Inc()
	}
}
