package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/bookseg/internal/segment"
)

// Title class match modes.
const (
	ClassMatchSubstring = "substring"
	ClassMatchToken     = "token"
)

type Config struct {
	Port string

	// Auth. Empty disables bearer auth on /api.
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Pagination
	PageWords int

	// Segmentation
	TitleClasses    []string
	TitleClassMatch string // "substring" or "token"
	TitleSelector   string
	BlockSelector   string
	Annotate        bool

	// Stats
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("BOOKSEG_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		PageWords: envInt("PAGE_WORDS", 350),

		TitleClasses:    envList("TITLE_CLASSES", segment.DefaultTitleClasses),
		TitleClassMatch: envOr("TITLE_CLASS_MATCH", ClassMatchSubstring),
		TitleSelector:   envOr("TITLE_SELECTOR", segment.DefaultTitleSelector),
		BlockSelector:   envOr("BLOCK_SELECTOR", segment.DefaultBlockSelector),
		Annotate:        envBool("ANNOTATE", true),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.PageWords <= 0 {
		cfg.PageWords = 350
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// SegmentOptions maps the segmentation settings onto segment.Options.
func (c Config) SegmentOptions() segment.Options {
	opts := segment.DefaultOptions()
	if len(c.TitleClasses) > 0 {
		opts.TitleClasses = append([]string(nil), c.TitleClasses...)
	}
	if c.TitleSelector != "" {
		opts.TitleSelector = c.TitleSelector
	}
	if c.BlockSelector != "" {
		opts.BlockSelector = c.BlockSelector
	}
	opts.SkipAnnotation = !c.Annotate
	opts.ClassTokens = c.TitleClassMatch == ClassMatchToken
	return opts
}

func (c Config) Validate() error {
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("MAX_QUEUE_SIZE must be positive, got %d", c.MaxQueueSize)
	}
	if c.PageWords <= 0 {
		return fmt.Errorf("PAGE_WORDS must be positive, got %d", c.PageWords)
	}
	switch c.TitleClassMatch {
	case "", ClassMatchSubstring, ClassMatchToken:
	default:
		return fmt.Errorf("TITLE_CLASS_MATCH must be %q or %q, got %q", ClassMatchSubstring, ClassMatchToken, c.TitleClassMatch)
	}
	if _, err := segment.New(c.SegmentOptions()); err != nil {
		return fmt.Errorf("segmentation settings: %w", err)
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

// envList splits a comma-separated value, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
