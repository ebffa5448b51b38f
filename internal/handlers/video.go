package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"brand-video-backend/internal/jobs"
	"brand-video-backend/internal/models"
	"brand-video-backend/internal/services"
	"brand-video-backend/internal/validation"
)

const messageGenerationStarted = "Video generation started"

// VideoGenerator is the part of services.VideoService the HTTP API uses.
type VideoGenerator interface {
	Submit(brand models.BrandRequest) (string, error)
	Status(id string) models.Job
	ArtifactPath(id string) (string, bool)
}

type VideoHandler struct {
	videos VideoGenerator
	log    zerolog.Logger
}

func NewVideoHandler(videos VideoGenerator, log zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		videos: videos,
		log:    log.With().Str("component", "video_handler").Logger(),
	}
}

// GenerateVideo godoc
// @Summary     Start video generation
// @Description Queues a promo video for the brand and returns its job id immediately. Poll the status endpoint for progress.
// @Tags        videos
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GenerateVideoRequest true "Brand metadata"
// @Success     200 {object} models.GenerateVideoResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /generate-video [post]
func (h *VideoHandler) GenerateVideo(c *gin.Context) {
	var req models.GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := validation.Struct(req); err != nil {
		var reqErr *validation.RequestError
		if errors.As(err, &reqErr) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: reqErr.First()})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := h.videos.Submit(req.ToBrand())
	switch {
	case errors.Is(err, services.ErrQueueFull), errors.Is(err, services.ErrShuttingDown):
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   err.Error(),
			Message: "try again later",
		})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to submit video job")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.GenerateVideoResponse{
		Success: true,
		VideoID: id,
		Message: messageGenerationStarted,
	})
}

// VideoStatus godoc
// @Summary     Get video job status
// @Description Returns the job record. Unknown ids answer 200 with status "not_found".
// @Tags        videos
// @Produce     json
// @Security    Bearer
// @Param       video_id path string true "Video job ID"
// @Success     200 {object} models.Job
// @Failure     401 {object} models.ErrorResponse
// @Router      /video-status/{video_id} [get]
func (h *VideoHandler) VideoStatus(c *gin.Context) {
	job := h.videos.Status(c.Param("video_id"))
	if job.Status == models.JobStatusNotFound {
		c.JSON(http.StatusOK, models.StatusNotFoundResponse{
			Status:  job.Status,
			Message: jobs.MessageNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, job)
}

// DownloadVideo godoc
// @Summary     Download a generated video
// @Description Streams the finished MP4 as an attachment named <video_id>.mp4.
// @Tags        videos
// @Produce     video/mp4
// @Security    Bearer
// @Param       video_id path string true "Video job ID"
// @Success     200 {file} file
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /download-video/{video_id} [get]
func (h *VideoHandler) DownloadVideo(c *gin.Context) {
	id := c.Param("video_id")
	path, ok := h.videos.ArtifactPath(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Video not found"})
		return
	}
	c.FileAttachment(path, id+".mp4")
}
