package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"brand-video-backend/internal/config"
	"brand-video-backend/internal/handlers"
	"brand-video-backend/internal/middleware"
)

func newRouter(cfg *config.Config, videos handlers.VideoGenerator, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Recovery(log))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check and metrics (no auth)
	router.GET("/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	videoHandler := handlers.NewVideoHandler(videos, log)

	api := router.Group("/api")
	if cfg.AuthEnabled() {
		api.Use(middleware.AuthMiddleware(cfg))
	} else {
		log.Warn().Msg("SUPABASE_JWT_SECRET not set, API routes are unauthenticated")
	}

	api.POST("/generate-video", middleware.RateLimit(cfg.RateLimitPerMin), videoHandler.GenerateVideo)
	api.GET("/video-status/:video_id", videoHandler.VideoStatus)
	api.GET("/download-video/:video_id", videoHandler.DownloadVideo)

	return router
}

// withCORS wraps the engine so preflight requests are answered before gin
// routing.
func withCORS(cfg *config.Config, h http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})(h)
}
