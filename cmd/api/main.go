package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/api/rest"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/api/rest/handlers"
	customMiddleware "github.com/JaxylViernes/wp-seo-autopilot/internal/api/rest/middleware"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/engine"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/repository/postgres"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/services"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/wordpress"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/workers"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/config"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/database"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/llm"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/llm/providers/anthropic"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/llm/providers/openai"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting WP SEO Autopilot API",
		logger.String("version", cfg.App.Version),
		logger.String("environment", cfg.App.Environment),
	)

	db, err := database.NewPostgresDB(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redis, err := database.NewRedisClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()

	// Repositories
	scheduleRepo := postgres.NewAutoScheduleRepository(db)
	queueRepo := postgres.NewContentScheduleRepository(db)
	contentRepo := postgres.NewContentRepository(db, log)
	siteRepo := postgres.NewSiteRepository(db)
	activityRepo := postgres.NewActivityRepository(db)

	// Collaborators
	llmClients, err := buildLLMClients(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize AI providers: %w", err)
	}
	defer func() {
		for _, c := range llmClients {
			c.Close()
		}
	}()

	publisher := wordpress.NewClient(cfg.WordPress.RequestTimeout, cfg.WordPress.UserAgent, log)

	m := metrics.New()

	// Services
	activityService := services.NewActivityService(activityRepo, log)
	generationService, err := services.NewGenerationService(
		llmClients,
		llm.Provider(cfg.AI.DefaultProvider),
		contentRepo,
		siteRepo,
		publisher,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize generation service: %w", err)
	}
	generationService.SetMetrics(m)

	orchestrator := engine.NewOrchestrator(
		scheduleRepo,
		queueRepo,
		generationService,
		redis,
		activityService,
		log,
		cfg.Scheduler.RunLockTTL,
	)
	orchestrator.SetMetrics(m)

	scheduleService := services.NewAutoScheduleService(scheduleRepo, siteRepo, orchestrator, activityService, log)
	queueService := services.NewContentScheduleService(queueRepo, contentRepo, log)

	// Background workers
	poller := workers.NewSchedulePoller(scheduleRepo, orchestrator, log, cfg.Scheduler.PollInterval, cfg.Scheduler.MaxConcurrent)
	publishWorker := workers.NewPublishWorker(queueRepo, contentRepo, siteRepo, publisher, activityService, log, cfg.Scheduler.PublishInterval)
	publishWorker.SetMetrics(m)
	resetWorker := workers.NewCounterResetWorker(scheduleRepo, activityService, log, cfg.Scheduler.ResetInterval)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	poller.Start(workerCtx)
	publishWorker.Start(workerCtx)
	resetWorker.Start(workerCtx)

	// HTTP surface
	h := handlers.NewHandlers(
		log,
		scheduleService,
		queueService,
		activityService,
		&handlers.HealthCheckers{DB: db, Redis: redis},
		cfg.App.Version,
	)

	rateLimiter := customMiddleware.NewRateLimiter(10, 20, log)
	go rateLimiter.Cleanup(workerCtx, time.Hour)

	router := rest.NewRouter(log, h, rateLimiter, m)
	router.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("API server listening", logger.String("address", addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))

		// Stop the workers before cutting off HTTP traffic so in-flight runs
		// finish cleanly.
		poller.Stop()
		publishWorker.Stop()
		resetWorker.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// buildLLMClients constructs a client per configured provider key
func buildLLMClients(cfg *config.Config) (map[llm.Provider]llm.Client, error) {
	clients := make(map[llm.Provider]llm.Client)

	if cfg.AI.OpenAIKey != "" {
		client, err := openai.NewClient(&llm.Config{
			Provider:     llm.ProviderOpenAI,
			APIKey:       cfg.AI.OpenAIKey,
			DefaultModel: cfg.AI.OpenAIModel,
			Timeout:      cfg.AI.RequestTimeout,
			MaxRetries:   cfg.AI.MaxRetries,
			RetryDelay:   cfg.AI.RetryDelay,
		})
		if err != nil {
			return nil, err
		}
		clients[llm.ProviderOpenAI] = client
	}

	if cfg.AI.AnthropicKey != "" {
		client, err := anthropic.NewClient(&llm.Config{
			Provider:     llm.ProviderAnthropic,
			APIKey:       cfg.AI.AnthropicKey,
			DefaultModel: cfg.AI.AnthropicModel,
			Timeout:      cfg.AI.RequestTimeout,
			MaxRetries:   cfg.AI.MaxRetries,
			RetryDelay:   cfg.AI.RetryDelay,
		})
		if err != nil {
			return nil, err
		}
		clients[llm.ProviderAnthropic] = client
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("no AI provider configured: set OPENAI_API_KEY or ANTHROPIC_API_KEY")
	}
	if _, ok := clients[llm.Provider(cfg.AI.DefaultProvider)]; !ok {
		return nil, fmt.Errorf("default AI provider %q has no API key configured", cfg.AI.DefaultProvider)
	}

	return clients, nil
}
