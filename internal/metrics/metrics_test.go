package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"brand-video-backend/internal/models"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordAPIRequest("GET", "/health", 200, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200")))
}

func TestObserveJob_CountsTerminalOnly(t *testing.T) {
	completed := testutil.ToFloat64(JobsFinished.WithLabelValues("completed"))
	processing := testutil.ToFloat64(JobsFinished.WithLabelValues("processing"))

	ObserveJob(models.Job{ID: "a", Status: models.JobStatusProcessing, Progress: 40})
	ObserveJob(models.Job{ID: "a", Status: models.JobStatusCompleted, Progress: 100})

	assert.Equal(t, completed+1, testutil.ToFloat64(JobsFinished.WithLabelValues("completed")))
	assert.Equal(t, processing, testutil.ToFloat64(JobsFinished.WithLabelValues("processing")))
}

func TestRecordMirrorUpload(t *testing.T) {
	ok := testutil.ToFloat64(MirrorUploads.WithLabelValues("success"))
	failed := testutil.ToFloat64(MirrorUploads.WithLabelValues("error"))

	RecordMirrorUpload(nil)
	RecordMirrorUpload(errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(MirrorUploads.WithLabelValues("success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(MirrorUploads.WithLabelValues("error")))
}

func TestRecordStage(t *testing.T) {
	RecordStage("render", time.Second)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(StageDuration, "video_stage_duration_seconds"), 1)
}
