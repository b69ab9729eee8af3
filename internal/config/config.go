package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port   string
	APIKey string

	// Optional downstream renderer notified with finished documents.
	SinkURL    string
	SinkAPIKey string

	// Model escalation ladder.
	ModelCLIPath   string
	ModelPrimary   string
	ModelStrong    string
	ModelFast      string
	ModelTimeout   time.Duration
	ChunkThreshold int
	AIEnabled      bool

	// Output validation against the original text.
	ValidationEnabled bool
	MaxLengthRatio    float64
	DialogueTolerance float64

	// Heading role detection.
	SectionKeywords      []string
	ChapterKeywords      []string
	TitleKeywords        []string
	DedicationKeywords   []string
	ContentsKeywords     []string
	PrefaceKeywords      []string
	OpeningQuoteKeywords []string
	// SingleChapter promotes the first heading to the chapter tier
	// even without a keyword match.
	SingleChapter bool

	// Page breaks.
	BreakBeforeSections bool
	BreakBeforeChapters bool

	// Decorative chapter separator.
	SeparatorEnabled  bool
	SeparatorPosition string
	SeparatorSymbol   string

	// Hierarchical lists (numbered named items with sub-points).
	HierListsEnabled bool
	HierListKeywords []string
	NumberedPattern  string

	// Reference template for the style catalog.
	ReferenceTemplate string

	// Worker pool and job state.
	WorkerCount    int
	MaxQueueSize   int
	MaxUploadBytes int64
	JobTTL         time.Duration
}

func Load() Config {
	cfg := Config{
		Port:   envOr("PORT", "8092"),
		APIKey: os.Getenv("TYPESET_API_KEY"),

		SinkURL:    os.Getenv("SINK_URL"),
		SinkAPIKey: os.Getenv("SINK_API_KEY"),

		ModelCLIPath:   envOr("MODEL_CLI_PATH", "claude"),
		ModelPrimary:   envOr("MODEL_PRIMARY", "sonnet"),
		ModelStrong:    envOr("MODEL_STRONG", "opus"),
		ModelFast:      envOr("MODEL_FAST", "haiku"),
		ModelTimeout:   envDuration("MODEL_TIMEOUT", 120*time.Second),
		ChunkThreshold: envInt("CHUNK_THRESHOLD", 3000),
		AIEnabled:      envBool("AI_ENABLED", true),

		ValidationEnabled: envBool("AI_VALIDATION", true),
		MaxLengthRatio:    envFloat("MAX_LENGTH_RATIO", 1.2),
		DialogueTolerance: envFloat("DIALOGUE_TOLERANCE", 1.5),

		SectionKeywords:      envList("SECTION_KEYWORDS", "section", "part"),
		ChapterKeywords:      envList("CHAPTER_KEYWORDS", "chapter"),
		TitleKeywords:        envList("TITLE_KEYWORDS", "title"),
		DedicationKeywords:   envList("DEDICATION_KEYWORDS", "dedication", "dedicated to"),
		ContentsKeywords:     envList("CONTENTS_KEYWORDS", "contents", "table of contents"),
		PrefaceKeywords:      envList("PREFACE_KEYWORDS", "preface", "foreword"),
		OpeningQuoteKeywords: envList("OPENING_QUOTE_KEYWORDS", "invocation", "epigraph", "verse"),
		SingleChapter:        envBool("SINGLE_CHAPTER", false),

		BreakBeforeSections: envBool("BREAK_BEFORE_SECTIONS", false),
		BreakBeforeChapters: envBool("BREAK_BEFORE_CHAPTERS", true),

		SeparatorEnabled:  envBool("SEPARATOR_ENABLED", false),
		SeparatorPosition: envOr("SEPARATOR_POSITION", "before"),
		SeparatorSymbol:   envOr("SEPARATOR_SYMBOL", "❦"),

		HierListsEnabled: envBool("HIER_LISTS_ENABLED", true),
		HierListKeywords: envList("HIER_LIST_KEYWORDS", "roles", "principles", "qualities"),
		NumberedPattern:  envOr("NUMBERED_PATTERN", `^\d+[.)]\s+`),

		ReferenceTemplate: os.Getenv("REFERENCE_TEMPLATE"),

		WorkerCount:    envInt("WORKER_COUNT", 2),
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", 50),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB
		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.ChunkThreshold <= 0 {
		cfg.ChunkThreshold = 3000
	}
	if cfg.MaxLengthRatio <= 1.0 {
		cfg.MaxLengthRatio = 1.2
	}
	if cfg.DialogueTolerance <= 1.0 {
		cfg.DialogueTolerance = 1.5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TYPESET_API_KEY is required")
	}
	if c.SeparatorPosition != "before" && c.SeparatorPosition != "after" {
		return fmt.Errorf("SEPARATOR_POSITION must be \"before\" or \"after\", got %q", c.SeparatorPosition)
	}
	if _, err := regexp.Compile(c.NumberedPattern); err != nil {
		return fmt.Errorf("NUMBERED_PATTERN does not compile: %w", err)
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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

// envList reads a comma-separated list, falling back to the given
// defaults when unset.
func envList(key string, fallback ...string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
