package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// API auth
	AuroraAPIKey string

	// Hooktheory upstream
	BaseURL        string
	UserAgent      string
	RequestTimeout time.Duration

	// Raw-document cache
	CacheDir string
	Fresh    bool

	// Clip catalog
	DatabasePath string

	// Worker pool
	WorkerCount      int
	MaxQueueSize     int
	FetchConcurrency int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Audio fetching
	YtdlpBin  string
	FfmpegBin string
	AudioDir  string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		AuroraAPIKey: os.Getenv("AURORA_API_KEY"),

		BaseURL:        envOr("HOOKTHEORY_BASE_URL", "https://www.hooktheory.com"),
		UserAgent:      envOr("AURORA_USER_AGENT", "github.com/caretcaret/aurora"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),

		CacheDir: envOr("AURORA_CACHE_DIR", "cache"),
		Fresh:    envBool("AURORA_FRESH", false),

		DatabasePath: envOr("AURORA_DB", "clips.db"),

		WorkerCount:      envInt("WORKER_COUNT", 4),
		MaxQueueSize:     envInt("MAX_QUEUE_SIZE", 100),
		FetchConcurrency: envInt("FETCH_CONCURRENCY", 8),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		YtdlpBin:  envOr("YTDLP_BIN", "yt-dlp"),
		FfmpegBin: envOr("FFMPEG_BIN", "ffmpeg"),
		AudioDir:  envOr("AURORA_AUDIO_DIR", "audio"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 8
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.AuroraAPIKey == "" {
		return fmt.Errorf("AURORA_API_KEY is required")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("AURORA_CACHE_DIR must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("AURORA_DB must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
