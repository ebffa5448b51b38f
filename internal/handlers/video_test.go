package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brand-video-backend/internal/handlers"
	"brand-video-backend/internal/jobs"
	"brand-video-backend/internal/models"
	"brand-video-backend/internal/services"
)

// fakeVideos registers jobs in a real tracker but never runs them.
type fakeVideos struct {
	tracker   *jobs.Tracker
	submitted []models.BrandRequest
	err       error
	artifacts map[string]string
	nextID    int
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{tracker: jobs.NewTracker(), artifacts: map[string]string{}}
}

func (f *fakeVideos) Submit(brand models.BrandRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.nextID++
	id := "job-" + string(rune('0'+f.nextID))
	if _, err := f.tracker.Create(id); err != nil {
		return "", err
	}
	f.submitted = append(f.submitted, brand)
	return id, nil
}

func (f *fakeVideos) Status(id string) models.Job { return f.tracker.Get(id) }

func (f *fakeVideos) ArtifactPath(id string) (string, bool) {
	p, ok := f.artifacts[id]
	return p, ok
}

func videoRouter(videos handlers.VideoGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewVideoHandler(videos, zerolog.Nop())
	router := gin.New()
	router.POST("/api/generate-video", h.GenerateVideo)
	router.GET("/api/video-status/:video_id", h.VideoStatus)
	router.GET("/api/download-video/:video_id", h.DownloadVideo)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateVideo_Accepted(t *testing.T) {
	videos := newFakeVideos()
	router := videoRouter(videos)

	w := do(router, "POST", "/api/generate-video",
		`{"brandName":"Acme","industry":"technology","description":""}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.GenerateVideoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.VideoID)
	assert.Equal(t, "Video generation started", resp.Message)

	require.Len(t, videos.submitted, 1)
	assert.Equal(t, models.BrandRequest{BrandName: "Acme", Industry: "technology", Description: "", Duration: 30}, videos.submitted[0])

	status := videos.Status(resp.VideoID)
	assert.Equal(t, models.JobStatusProcessing, status.Status)
	assert.Equal(t, 0, status.Progress)
	assert.Equal(t, "Starting generation...", status.Message)
}

func TestGenerateVideo_KeepsDuration(t *testing.T) {
	videos := newFakeVideos()
	w := do(videoRouter(videos), "POST", "/api/generate-video",
		`{"brandName":"Acme","industry":"retail","description":"Shoes","duration":60}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 60, videos.submitted[0].Duration)
	assert.Equal(t, "Shoes", videos.submitted[0].Description)
}

func TestGenerateVideo_AcceptsStringDuration(t *testing.T) {
	videos := newFakeVideos()
	w := do(videoRouter(videos), "POST", "/api/generate-video",
		`{"brandName":"Acme","industry":"technology","description":"Cloud tooling","duration":"15"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, videos.submitted, 1)
	assert.Equal(t, 15, videos.submitted[0].Duration)
}

func TestGenerateVideo_RejectsNonNumericDuration(t *testing.T) {
	videos := newFakeVideos()
	w := do(videoRouter(videos), "POST", "/api/generate-video",
		`{"brandName":"Acme","industry":"technology","description":"","duration":"soon"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
	assert.Empty(t, videos.submitted)
}

func TestGenerateVideo_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing brandName", `{"industry":"technology","description":""}`, "brandName is required"},
		{"empty brandName", `{"brandName":"","industry":"technology","description":""}`, "brandName is required"},
		{"missing industry", `{"brandName":"Acme","description":""}`, "industry is required"},
		{"missing description", `{"brandName":"Acme","industry":"technology"}`, "description is required"},
		{"first missing field wins", `{}`, "brandName is required"},
		{"negative duration", `{"brandName":"Acme","industry":"technology","description":"","duration":-5}`, "duration must be at least 1"},
		{"negative string duration", `{"brandName":"Acme","industry":"technology","description":"","duration":"-5"}`, "duration must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos := newFakeVideos()
			w := do(videoRouter(videos), "POST", "/api/generate-video", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
			assert.Empty(t, videos.submitted)
			assert.Equal(t, 0, videos.tracker.Len())
		})
	}
}

func TestGenerateVideo_InvalidJSON(t *testing.T) {
	videos := newFakeVideos()
	w := do(videoRouter(videos), "POST", "/api/generate-video", `{"brandName":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
	assert.Empty(t, videos.submitted)
}

func TestGenerateVideo_QueueFull(t *testing.T) {
	videos := newFakeVideos()
	videos.err = services.ErrQueueFull

	w := do(videoRouter(videos), "POST", "/api/generate-video",
		`{"brandName":"Acme","industry":"technology","description":""}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestGenerateVideo_InternalError(t *testing.T) {
	videos := newFakeVideos()
	videos.err = errors.New("failed to register job")

	w := do(videoRouter(videos), "POST", "/api/generate-video",
		`{"brandName":"Acme","industry":"technology","description":""}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to register job"}`, w.Body.String())
}

func TestVideoStatus_Known(t *testing.T) {
	videos := newFakeVideos()
	router := videoRouter(videos)
	id, err := videos.Submit(models.BrandRequest{BrandName: "Acme"})
	require.NoError(t, err)
	_, err = videos.tracker.Update(id, 40, "Creating visuals...")
	require.NoError(t, err)

	w := do(router, "GET", "/api/video-status/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, models.JobStatusProcessing, job.Status)
	assert.Equal(t, 40, job.Progress)
	assert.Equal(t, "Creating visuals...", job.Message)
	assert.Empty(t, job.VideoURL)
}

func TestVideoStatus_Completed(t *testing.T) {
	videos := newFakeVideos()
	id, _ := videos.Submit(models.BrandRequest{BrandName: "Acme"})
	_, err := videos.tracker.Update(id, 100, "Video generated successfully!",
		jobs.WithStatus(models.JobStatusCompleted), jobs.WithVideoURL("/api/download-video/"+id))
	require.NoError(t, err)

	w := do(videoRouter(videos), "GET", "/api/video-status/"+id, "")
	assert.Contains(t, w.Body.String(), `"video_url":"/api/download-video/`+id+`"`)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestVideoStatus_Unknown(t *testing.T) {
	w := do(videoRouter(newFakeVideos()), "GET", "/api/video-status/does-not-exist", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"not_found","message":"Video ID not found"}`, w.Body.String())
}

func TestDownloadVideo(t *testing.T) {
	videos := newFakeVideos()
	path := filepath.Join(t.TempDir(), "job-1.mp4")
	require.NoError(t, os.WriteFile(path, []byte("mp4-bytes"), 0o644))
	videos.artifacts["job-1"] = path

	w := do(videoRouter(videos), "GET", "/api/download-video/job-1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mp4-bytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="job-1.mp4"`)
}

func TestDownloadVideo_NotFound(t *testing.T) {
	w := do(videoRouter(newFakeVideos()), "GET", "/api/download-video/unknown", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Video not found"}`, w.Body.String())
}
