package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar points at an optional YAML file layered under the environment.
const PathEnvVar = "CONFIG_PATH"

var defaultPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	// Server
	Port            string        `koanf:"port"`
	Environment     string        `koanf:"environment"`
	BaseURL         string        `koanf:"base_url"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     string        `koanf:"cors_origins"`
	RateLimitPerMin int           `koanf:"rate_limit_per_minute"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// Video pipeline
	OutputDir   string `koanf:"output_dir"`
	WorkDir     string `koanf:"work_dir"`
	FFmpegPath  string `koanf:"ffmpeg_path"`
	FontPath    string `koanf:"font_path"`
	VideoFPS    int    `koanf:"video_fps"`
	WorkerCount int    `koanf:"worker_count"`
	QueueSize   int    `koanf:"queue_size"`

	// Supabase
	SupabaseURL            string `koanf:"supabase_url"`
	SupabasePublishableKey string `koanf:"supabase_publishable_key"`
	SupabaseJWTSecret      string `koanf:"supabase_jwt_secret"`
	SupabaseStorageBucket  string `koanf:"supabase_storage_bucket"`
	SupabaseEventsTable    string `koanf:"supabase_events_table"`

	// Database
	DatabaseURL string `koanf:"database_url"`
}

func defaults() Config {
	return Config{
		Port:            "5004",
		Environment:     "development",
		BaseURL:         "http://localhost:5004",
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     "*",
		RateLimitPerMin: 30,

		LogLevel:  "",
		LogFormat: "",

		OutputDir:   "generated_videos",
		WorkDir:     "tmp/video-work",
		FFmpegPath:  "ffmpeg",
		VideoFPS:    24,
		WorkerCount: 2,
		QueueSize:   32,

		SupabaseStorageBucket: "generated-videos",
		SupabaseEventsTable:   "video_job_events",
	}
}

// Load layers defaults, an optional YAML file and the environment, in that
// order of increasing precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// PORT -> port, SUPABASE_URL -> supabase_url
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("WORK_DIR is required")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1")
	}
	if c.VideoFPS < 1 {
		return fmt.Errorf("VIDEO_FPS must be at least 1")
	}
	if c.SupabaseURL != "" && c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required when SUPABASE_URL is set")
	}
	return nil
}

// SupabaseEnabled reports whether artifact mirroring and job events are on.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabasePublishableKey != ""
}

// AuthEnabled reports whether the API requires a Supabase-issued bearer token.
func (c *Config) AuthEnabled() bool {
	return c.SupabaseJWTSecret != ""
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
