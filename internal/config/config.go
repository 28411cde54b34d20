// Package config defines the process configuration and its layered loader.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and SLAM_* env vars on top.
// - Durations accept Go duration strings ("15s", "5m").
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the local HTTP listen address the shell talks to.
	Addr string `koanf:"addr"`

	// APIBaseURL is the sport backend root, including its /api base path.
	APIBaseURL string `koanf:"api_base_url"`

	// APITimeout bounds ordinary backend calls.
	APITimeout time.Duration `koanf:"api_timeout"`

	// AITimeout bounds image recognition calls.
	AITimeout time.Duration `koanf:"ai_timeout"`

	// ImportTimeout bounds vendor file imports.
	ImportTimeout time.Duration `koanf:"import_timeout"`

	// AvatarTimeout bounds avatar uploads.
	AvatarTimeout time.Duration `koanf:"avatar_timeout"`

	// APIMaxRetries is how many times idempotent GETs are retried on transport errors and 5xx.
	APIMaxRetries int `koanf:"api_max_retries"`

	// DefaultLang is used when neither the request nor Accept-Language pick a language.
	DefaultLang string `koanf:"default_lang"`

	// ExtraPerRow forces a uniform extra-field layout; 0 keeps the per-type layout.
	ExtraPerRow int `koanf:"extra_per_row"`

	// DraftCapacity caps the number of in-memory drafts.
	DraftCapacity int `koanf:"draft_capacity"`

	// RecognitionWorkers sets the number of recognition workers.
	RecognitionWorkers int `koanf:"recognition_workers"`

	// RecognitionQueueSize bounds the recognition job queue.
	RecognitionQueueSize int `koanf:"recognition_queue_size"`

	// RecognitionDedupeSize bounds the in-flight image fingerprint set.
	RecognitionDedupeSize int `koanf:"recognition_dedupe_size"`

	// AllowedOrigins lists the shell origins allowed by CORS.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// MaxPageSize caps GET /sports?size.
	MaxPageSize int `koanf:"max_page_size"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		APIBaseURL:            "http://127.0.0.1:8000/api",
		APITimeout:            15 * time.Second,
		AITimeout:             300 * time.Second,
		ImportTimeout:         120 * time.Second,
		AvatarTimeout:         60 * time.Second,
		APIMaxRetries:         2,
		DefaultLang:           "zh",
		ExtraPerRow:           0,
		DraftCapacity:         256,
		RecognitionWorkers:    runtime.NumCPU(),
		RecognitionQueueSize:  64,
		RecognitionDedupeSize: 1024,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"capacitor://localhost",
			"https://localhost",
		},
		MaxPageSize: 100,
	}
}
