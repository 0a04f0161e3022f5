package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v3"

	"doc-summarizer/internal/apiclient"
	"doc-summarizer/internal/cache"
	"doc-summarizer/internal/config"
	"doc-summarizer/internal/events"
	"doc-summarizer/internal/llm"
	"doc-summarizer/internal/logger"
)

// ClientDeps bundles what the CLI needs.
type ClientDeps struct {
	Config  config.Config
	Log     *slog.Logger
	API     apiclient.API
	Events  events.Publisher
	closers []io.Closer
}

// Close releases the event connection and the log file, if any.
func (d ClientDeps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i].Close()
	}
}

// ServerDeps bundles what the reference server needs.
type ServerDeps struct {
	Config config.Config
	Log    *slog.Logger
	LLM    llm.Client
	Cache  cache.Cache
}

// loadEnv reads .env when present. A missing file is not an error.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

func buildLogger(cfg config.Config, console io.Writer) (*slog.Logger, io.Closer) {
	if cfg.LogFile == "" {
		return logger.NewWithWriter(console, cfg.LogLevel), nil
	}
	f := logger.NewRotatingFile(cfg.LogFile)
	return logger.NewWithWriter(f, cfg.LogLevel), f
}

// BuildClient loads env and config and wires the API client. Logs go to
// console unless LOG_FILE is set.
func BuildClient(console io.Writer) (ClientDeps, error) {
	if err := loadEnv(); err != nil {
		return ClientDeps{}, err
	}
	cfg := config.Load()
	return NewClientDeps(cfg, console)
}

// NewClientDeps wires client dependencies from an already loaded config.
func NewClientDeps(cfg config.Config, console io.Writer) (ClientDeps, error) {
	log, logCloser := buildLogger(cfg, console)
	deps := ClientDeps{Config: cfg, Log: log}
	if logCloser != nil {
		deps.closers = append(deps.closers, logCloser)
	}

	pub, err := buildEvents(cfg, log)
	if err != nil {
		deps.Close()
		return ClientDeps{}, fmt.Errorf("failed to initialize events: %w", err)
	}
	deps.Events = pub
	deps.closers = append(deps.closers, pub)
	deps.API = apiclient.New(cfg.APIURL, log)
	return deps, nil
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsProvider {
	case "", "none":
		return events.NoOp{}, nil
	case "nats":
		if cfg.EventsURL == "" {
			return nil, fmt.Errorf("EVENTS_URL is required when EVENTS_PROVIDER=nats")
		}
		pub, err := events.ConnectNATS(log, cfg.EventsURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("publishing workflow events to NATS")
		return pub, nil
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}

// BuildServer loads env, config, and shared server components.
func BuildServer(console io.Writer) (ServerDeps, error) {
	if err := loadEnv(); err != nil {
		return ServerDeps{}, err
	}
	cfg := config.Load()
	log, _ := buildLogger(cfg, console)

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return ServerDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	c, err := buildCache(cfg, log)
	if err != nil {
		return ServerDeps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return ServerDeps{
		Config: cfg,
		Log:    log,
		LLM:    llmClient,
		Cache:  c,
	}, nil
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, cfg.LLMBaseURL, openai.ChatModel(cfg.LLMModel), cfg.MaxInputChars)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI-compatible LLM client", "model", cfg.LLMModel, "base_url", cfg.LLMBaseURL)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

// buildCache falls back to the no-op cache when Redis cannot be reached so
// the server still starts.
func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	switch cfg.CacheProvider {
	case "", "none":
		return cache.NewNoOpCache(), nil
	case "memory":
		log.Info("using in-memory cache", "ttl", ttl)
		return cache.NewMemoryCache(ttl), nil
	case "redis":
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache(), nil
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr, "ttl", ttl)
		return rc, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, memory, redis)", cfg.CacheProvider)
	}
}
