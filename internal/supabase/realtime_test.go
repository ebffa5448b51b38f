package supabase_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	supabasego "github.com/supabase-community/supabase-go"

	"brand-video-backend/internal/models"
	"brand-video-backend/internal/supabase"
)

func TestEventFromJob(t *testing.T) {
	tests := []struct {
		job  models.Job
		want string
	}{
		{models.Job{Status: models.JobStatusProcessing, Progress: 0}, "started"},
		{models.Job{Status: models.JobStatusProcessing, Progress: 40}, "progress"},
		{models.Job{Status: models.JobStatusCompleted, Progress: 100}, "completed"},
		{models.Job{Status: models.JobStatusFailed, Progress: 100}, "failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, supabase.EventFromJob(tt.job).Event)
	}
}

func TestRealtimeClient_PublishesInsert(t *testing.T) {
	var gotPath string
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sb, err := supabasego.NewClient(server.URL, "anon-key", nil)
	require.NoError(t, err)
	client := supabase.NewRealtimeClient(sb, "video_job_events", zerolog.Nop())

	client.JobChanged(models.Job{
		ID:        "job-1",
		Status:    models.JobStatusCompleted,
		Progress:  100,
		Message:   "Video generated successfully!",
		VideoURL:  "/api/download-video/job-1",
		UpdatedAt: time.Now(),
	})

	assert.Equal(t, "/rest/v1/video_job_events", gotPath)
	assert.Equal(t, "job-1", got["job_id"])
	assert.Equal(t, "completed", got["event"])
	assert.Equal(t, "/api/download-video/job-1", got["video_url"])
}

func TestRealtimeClient_PublishError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"42P01","message":"relation does not exist"}`))
	}))
	defer server.Close()

	sb, err := supabasego.NewClient(server.URL, "anon-key", nil)
	require.NoError(t, err)
	client := supabase.NewRealtimeClient(sb, "missing", zerolog.Nop())

	err = client.PublishEvent(supabase.JobEvent{JobID: "job-1", Event: "started"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")

	assert.NotPanics(t, func() { client.JobChanged(models.Job{ID: "job-1"}) })
}
