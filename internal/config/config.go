package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for both the CLI client and the
// reference server. Each binary reads only the fields it needs.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"` // rotated log file; empty means stderr (client) or stdout (server)

	// Client
	APIURL         string `env:"API_URL" envDefault:"http://localhost:8085"`
	OutputDir      string `env:"OUTPUT_DIR" envDefault:"."`
	SummaryMethod  string `env:"SUMMARY_METHOD" envDefault:"extractive"` // "extractive" or "abstractive"
	SummaryLength  string `env:"SUMMARY_LENGTH" envDefault:"medium"`     // "short", "medium" or "detailed"
	UseOpenAI      bool   `env:"USE_OPENAI" envDefault:"true"`
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none"` // "none" or "nats"
	EventsURL      string `env:"EVENTS_URL"`

	// Server
	Port          int   `env:"PORT" envDefault:"8085"`
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes
	MaxInputChars int   `env:"MAX_INPUT_CHARS" envDefault:"25000"`

	// LLM
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"` // any OpenAI-compatible API
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	LLMBaseURL  string `env:"LLM_BASE_URL"` // e.g. https://api.groq.com/openai/v1
	LLMModel    string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none", "memory" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
