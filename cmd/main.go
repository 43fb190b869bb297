package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bilgisen/faithcheck/internal/ai"
	"github.com/bilgisen/faithcheck/internal/answer"
	"github.com/bilgisen/faithcheck/internal/api"
	"github.com/bilgisen/faithcheck/internal/cache"
	"github.com/bilgisen/faithcheck/internal/config"
	"github.com/bilgisen/faithcheck/internal/feed"
	"github.com/bilgisen/faithcheck/internal/logger"
	"github.com/bilgisen/faithcheck/internal/middleware"
	"github.com/bilgisen/faithcheck/internal/sources"
	"github.com/bilgisen/faithcheck/internal/verify"
	"github.com/bilgisen/faithcheck/internal/view"
)

func main() {
	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting application...")

	resolver, err := sources.Load(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load source metadata")
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize verification store")
	}
	defer func() {
		log.Info().Msg("Closing verification store...")
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing verification store")
		}
	}()

	aggregator := feed.NewAggregator(
		feed.QueryBuilder{APIKey: cfg.PerigonAPIKey},
		feed.NewFetcher(cfg.FeedBaseURL, feedDeadline(cfg.HTTPTimeout), 3),
	)
	pipeline := verify.NewPipeline(
		ai.NewQuestionGenerator(cfg.AIBaseURL, cfg.AIApiKey, cfg.AIModel, cfg.AITemperature, cfg.AITimeout),
		answer.NewClient(cfg.AnswerAPIURL, cfg.PerigonAPIKey),
	)
	verifications := verify.NewCache(pipeline, store, cfg.VerifyTimeout)
	defer verifications.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api.SetupRoutes(app, api.NewHandlers(view.New(aggregator, resolver, verifications), resolver))

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// feedDeadline leaves room inside the server write timeout to answer a slow
// upstream with a 502
func feedDeadline(writeTimeout time.Duration) time.Duration {
	return writeTimeout * 4 / 5
}

// newStore opens the configured verification store. Entries left by an
// earlier process are cleared: verifications never outlive a session.
func newStore(cfg *config.Config) (cache.Store, error) {
	if cfg.CacheBackend != "redis" {
		return cache.NewMemoryStore(), nil
	}

	store, err := cache.NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Clear(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
