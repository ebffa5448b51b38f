// @title           Brand Video Backend API
// @version         1.0.0
// @description     Generates short promotional slideshow videos from brand metadata. Submit a brand, poll the job status, then download the MP4.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5004
// @BasePath  /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"brand-video-backend/docs"
	"brand-video-backend/internal/config"
	"brand-video-backend/internal/database"
	"brand-video-backend/internal/graphics"
	"brand-video-backend/internal/jobs"
	"brand-video-backend/internal/logging"
	"brand-video-backend/internal/metrics"
	"brand-video-backend/internal/render"
	"brand-video-backend/internal/services"
	"brand-video-backend/internal/storage"
	"brand-video-backend/internal/supabase"
	"brand-video-backend/internal/supervisor"
	"brand-video-backend/internal/visuals"
)

// observerBuffer bounds how many job updates may queue for a slow sink.
const observerBuffer = 256

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(logging.Options{})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	setSwaggerHost(cfg.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	fonts, err := graphics.LoadFonts(cfg.FontPath)
	if err != nil {
		return err
	}

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		return err
	}

	tree := supervisor.NewTree(log, supervisor.TreeConfig{ShutdownTimeout: cfg.ShutdownTimeout})
	tracker := jobs.NewTracker(jobs.ObserverFunc(metrics.ObserveJob))

	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, job history will not be persisted")
	} else if db, err := database.Open(ctx, cfg.DatabaseURL); err != nil {
		log.Warn().Err(err).Msg("Failed to connect to database, job history disabled")
	} else {
		defer db.Close()
		if err := database.NewMigrator(db, log).Run(ctx); err != nil {
			log.Warn().Err(err).Msg("Migration failed, job history disabled")
		} else {
			history := jobs.NewAsyncObserver("job-history", database.NewHistoryWriter(db, log), observerBuffer, log)
			tracker.AddObserver(history)
			tree.AddPipelineService(history)
		}
	}

	var mirror services.ArtifactMirror
	if cfg.SupabaseEnabled() {
		client, err := supabase.NewClient(cfg)
		if err != nil {
			return err
		}
		mirror = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket, log)

		events := jobs.NewAsyncObserver("job-events",
			supabase.NewRealtimeClient(client.Supabase, cfg.SupabaseEventsTable, log), observerBuffer, log)
		tracker.AddObserver(events)
		tree.AddPipelineService(events)
	} else {
		log.Info().Msg("Supabase not configured, videos are served from local storage only")
	}

	composer := visuals.NewComposer(fonts, cfg.WorkDir, log)
	renderer := render.NewRenderer(render.NewExecRunner(log), store, fonts, render.Options{
		FFmpegPath: cfg.FFmpegPath,
		FPS:        cfg.VideoFPS,
		WorkDir:    cfg.WorkDir,
	}, log)

	videoService := services.NewVideoService(tracker, composer, renderer, store, services.VideoServiceOptions{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.QueueSize,
		Mirror:    mirror,
	}, log)
	tree.AddPipelineService(videoService)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withCORS(cfg, newRouter(cfg, videoService, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.ShutdownTimeout))

	log.Info().
		Str("port", cfg.Port).
		Str("environment", cfg.Environment).
		Str("output_dir", store.BasePath()).
		Int("workers", cfg.WorkerCount).
		Msg("Server starting")

	err = tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		log.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return err
}

// setSwaggerHost points the generated docs at the public base URL.
func setSwaggerHost(baseURL string) {
	if baseURL == "" {
		return
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return
	}
	docs.SwaggerInfo.Host = u.Host
	if u.Scheme == "https" {
		docs.SwaggerInfo.Schemes = []string{"https", "http"}
	} else {
		docs.SwaggerInfo.Schemes = []string{"http", "https"}
	}
}
