package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/quiz-generator/internal/agents"
	"github.com/SAP-F-2025/quiz-generator/internal/cache"
	"github.com/SAP-F-2025/quiz-generator/internal/config"
	"github.com/SAP-F-2025/quiz-generator/internal/events"
	"github.com/SAP-F-2025/quiz-generator/internal/handlers"
	"github.com/SAP-F-2025/quiz-generator/internal/llm"
	"github.com/SAP-F-2025/quiz-generator/internal/metrics"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories/memory"
	"github.com/SAP-F-2025/quiz-generator/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-generator/internal/services"
	"github.com/SAP-F-2025/quiz-generator/internal/storage"
	"github.com/SAP-F-2025/quiz-generator/internal/tools"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
	"github.com/SAP-F-2025/quiz-generator/internal/validator"
	"github.com/SAP-F-2025/quiz-generator/pkg"
)

const briefTTL = 24 * time.Hour

type app struct {
	Quiz services.QuizService
	Trip services.TripService

	cfg       *config.Config
	logger    utils.Logger
	store     *storage.Store
	keyed     *cache.KeyedBriefCache
	redis     *redis.Client
	publisher events.EventPublisher
}

func newApp(ctx context.Context, cfg *config.Config, logger utils.Logger, serve bool) (*app, error) {
	a := &app{cfg: cfg, logger: logger, store: storage.New()}

	provider, err := llm.NewGeminiProvider(ctx, cfg.GeminiModel, cfg.GeminiAPIKey, cfg.GeminiBaseURL, &http.Client{Timeout: 5 * time.Minute})
	if err != nil {
		return nil, err
	}
	specs, err := agents.DefaultAgentSpecs()
	if err != nil {
		return nil, err
	}

	files := tools.NewFileTools(a.store)
	registry := tools.NewRegistry(
		tools.NewScraper().Tool(),
		tools.NewWebSearch().Tool(),
		files.ReaderTool(),
		files.WriterTool(),
		tools.WordWriterTool(),
	)

	briefs, err := a.briefCache(ctx, serve)
	if err != nil {
		return nil, err
	}

	runs, err := a.runRepository()
	if err != nil {
		return nil, err
	}

	slogger := utils.ToSlogLogger(logger)
	a.publisher, err = cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		a.publisher = events.NewMockEventPublisher(slogger)
	}

	var recorder *metrics.Recorder
	if cfg.PushgatewayEnabled {
		recorder = metrics.NewRecorder(cfg.PushgatewayURL, logger)
	}

	v := validator.New()
	a.Quiz = services.NewQuizService(services.QuizServiceDeps{
		Provider:  provider,
		Specs:     specs,
		Tools:     registry,
		Briefs:    briefs,
		Runs:      runs,
		Publisher: a.publisher,
		Metrics:   recorder,
		Validator: v,
		Store:     a.store,
		Logger:    logger,
	}, services.QuizServiceConfig{
		OutputDir:  cfg.OutputDir,
		ExportXLSX: cfg.ExportXLSX,
	})

	a.Trip, err = services.NewTripService(provider, filepath.Join(cfg.OutputDir, "outputs"), a.publisher, v, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// briefCache keys briefs by URL in Redis when REDIS_URL is set. The server
// otherwise keeps them in memory and the terminal run uses the single
// content_brief.md file.
func (a *app) briefCache(ctx context.Context, serve bool) (cache.BriefCache, error) {
	if a.cfg.RedisURL == "" {
		if serve {
			a.keyed = cache.NewKeyedBriefCache(cache.NewMemoryCache(), briefTTL)
			return a.keyed, nil
		}
		return cache.NewFileBriefCache(filepath.Join(a.cfg.OutputDir, a.cfg.BriefFile), a.store), nil
	}
	client, err := pkg.NewRedisClient(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.keyed = cache.NewKeyedBriefCache(cache.NewRedisCache(client, a.logger), briefTTL)
	a.logger.Info("Using Redis brief cache")
	return a.keyed, nil
}

func (a *app) runRepository() (repositories.QuizRunRepository, error) {
	if a.cfg.DatabaseURL == "" {
		a.logger.Debug("DATABASE_URL not set, keeping run history in memory")
		return memory.NewQuizRunMemory(), nil
	}
	db, err := pkg.InitDatabase(a.cfg)
	if err != nil {
		return nil, err
	}
	return postgres.NewQuizRunPostgreSQL(db), nil
}

// PurgeBriefs drops every cached content brief.
func (a *app) PurgeBriefs(ctx context.Context) error {
	if a.keyed != nil {
		return a.keyed.Purge(ctx)
	}
	path := filepath.Join(a.cfg.OutputDir, a.cfg.BriefFile)
	exists, err := a.store.Exists(ctx, path)
	if err != nil || !exists {
		return err
	}
	return a.store.Delete(ctx, path)
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *app) Serve(ctx context.Context, addr string) error {
	if a.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(a.logger))
	handlers.NewHandlerManager(a.Quiz, a.Trip, a.logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Failed to close event publisher", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("Failed to close redis client", "error", err)
		}
	}
}
