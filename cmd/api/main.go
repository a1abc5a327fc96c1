package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chefrelay/internal/api"
	"chefrelay/internal/config"
	"chefrelay/internal/imaging"
	"chefrelay/internal/journal"
	"chefrelay/internal/llm"
	"chefrelay/internal/platform/gemini"
	"chefrelay/internal/platform/openai"
	"chefrelay/internal/recipe"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("config.json")
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newProviders(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.close()
	if p.images == nil {
		logger.Warn("no OpenAI API key configured, image generation is disabled")
	}

	opts := llm.DefaultOptions()
	opts.Timeout = cfg.UpstreamTimeout
	opts.MaxTokens = cfg.MaxTokens
	opts.Temperature = cfg.Temperature
	gateway := llm.NewGateway(p.text, p.images, opts)
	processor := imaging.NewProcessor(&http.Client{Timeout: cfg.ImageFetchTimeout}, cfg.ImageMaxWidth)

	rec, closeJournal, err := newJournal(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer closeJournal()

	handler := api.NewHandler(gateway, processor, recipe.NewPromptBuilder(cfg.RecipeLanguage), logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Journal:     rec,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", cfg.LLMProvider),
			zap.Bool("journal", cfg.DatabaseURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

type providers struct {
	text   llm.TextCompleter
	images llm.ImageGenerator
	close  func()
}

// newProviders builds the text provider named by cfg.LLMProvider. Images
// always go through the OpenAI client, which exists only when a key is set.
func newProviders(ctx context.Context, cfg *config.Config) (*providers, error) {
	p := &providers{close: func() {}}

	var oa *openai.Client
	if cfg.OpenAIAPIKey != "" {
		oa = openai.NewClient(openai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			TextModel:  cfg.TextModel,
			ImageModel: cfg.ImageModel,
		})
		p.images = oa
	}

	switch cfg.LLMProvider {
	case "gemini":
		gc, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.TextModel)
		if err != nil {
			return nil, fmt.Errorf("error creating gemini client: %w", err)
		}
		p.text = gc
		p.close = func() { _ = gc.Close() }
	case "openai":
		if oa == nil {
			return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
		}
		p.text = oa
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
	return p, nil
}

const (
	journalQueueSize = 1024
	journalTimeout   = 2 * time.Second
)

// newJournal returns a Recorder that writes to PostgreSQL off the request
// path, or a Nop when no database is configured. The returned func drains the
// queue before closing the connection.
func newJournal(ctx context.Context, databaseURL string, logger *zap.Logger) (journal.Recorder, func(), error) {
	if databaseURL == "" {
		return journal.Nop{}, func() {}, nil
	}
	store, err := journal.NewPostgresStore(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating journal store: %w", err)
	}
	async := journal.NewAsync(store, journalQueueSize, journalTimeout, logger)
	return async, func() {
		async.Close()
		_ = store.Close()
	}, nil
}
