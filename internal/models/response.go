package models

type GenerateVideoResponse struct {
	Success bool   `json:"success"`
	VideoID string `json:"video_id"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// StatusNotFoundResponse is returned by the status endpoint for unknown ids.
type StatusNotFoundResponse struct {
	Status  JobStatus `json:"status" example:"not_found"`
	Message string    `json:"message" example:"Video ID not found"`
}
