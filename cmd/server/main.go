package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockinterview/ai/internal/config"
	"mockinterview/ai/internal/events"
	"mockinterview/ai/internal/handlers"
	"mockinterview/ai/internal/interview"
	"mockinterview/ai/internal/jobs"
	"mockinterview/ai/internal/llm"
	"mockinterview/ai/internal/llm/fallback"
	"mockinterview/ai/internal/llm/gemini"
	"mockinterview/ai/internal/llm/openai"
	"mockinterview/ai/internal/metrics"
	"mockinterview/ai/internal/prompts"
	"mockinterview/ai/internal/repositories"
	mongorepo "mockinterview/ai/internal/repositories/mongo"
	"mockinterview/ai/internal/routers"
	"mockinterview/ai/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sessionStore is what every backend offers: the engine contract plus export tracking.
type sessionStore interface {
	interview.Store
	jobs.TranscriptSource
}

type storeHandle struct {
	store sessionStore
	probe handlers.Probe
	close func(context.Context) error
}

// openStore connects the configured session backend.
func openStore(ctx context.Context, cfg *config.Config) (*storeHandle, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return &storeHandle{
			store: repositories.NewMemoryRepository(),
			probe: func(context.Context) error { return nil },
			close: func(context.Context) error { return nil },
		}, nil

	case config.StoreSQLite, config.StorePostgres:
		var dialector gorm.Dialector
		if cfg.StoreBackend == config.StoreSQLite {
			dialector = sqlite.Open(cfg.SQLitePath)
		} else {
			dialector = postgres.Open(cfg.Postgres.DSN())
		}
		db, err := gorm.Open(dialector, &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo, err := repositories.NewSessionRepository(db)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &storeHandle{
			store: repo,
			probe: sqlDB.PingContext,
			close: func(context.Context) error { return sqlDB.Close() },
		}, nil

	case config.StoreMongo:
		client, err := mongorepo.NewClient(ctx, cfg.Mongo.URI, cfg.Mongo.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		repo, err := mongorepo.NewSessionRepo(ctx, client, cfg.Mongo.Collection)
		if err != nil {
			return nil, err
		}
		return &storeHandle{
			store: repo,
			probe: client.Ping,
			close: client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
}

// newRegistry registers every provider the service can run with.
func newRegistry(cfg *config.Config, logger *zap.Logger) *llm.Registry {
	reg := llm.NewRegistry()
	openai.Register(reg, nil)
	gemini.Register(reg, nil)
	fallback.Register(reg, cfg.Heuristic, logger)
	return reg
}

// requestTimeout leaves room for the slowest provider call plus persistence.
func requestTimeout(cfg *config.Config) time.Duration {
	return cfg.Timeouts.Evaluation + 15*time.Second
}

func newRouter(cfg *config.Config, m *metrics.Metrics, gatherer prometheus.Gatherer, interviewHandler *handlers.InterviewHandler, healthHandler *handlers.HealthHandler) *chi.Mux {
	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-User-ID"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	router.Use(m.Middleware)
	router.Use(middleware.Timeout(requestTimeout(cfg)))

	routers.HealthRoutes(router, healthHandler)
	routers.MetricsRoutes(router, metrics.Handler(gatherer))
	routers.InterviewRoutes(router, interviewHandler)
	return router
}

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("mode", string(cfg.ProviderMode)),
		zap.String("store", cfg.StoreBackend))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	serviceMetrics := metrics.New(registry, "ai")

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	selection, err := newRegistry(cfg, logger).Resolve(llm.SelectionOptions{
		Mode:   cfg.ProviderMode,
		Remote: cfg.RemoteProvider(),
		Breaker: llm.BreakerSettings{
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		},
		Observer: serviceMetrics,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}
	logger.Info("AI provider ready",
		zap.String("provider", selection.Provider().GetProviderName()),
		zap.String("tier", selection.Tier()))

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStore(startupCtx, cfg)
	cancelStartup()
	if err != nil {
		logger.Fatal("Failed to initialize session store", zap.Error(err))
	}

	healthHandler := handlers.NewHealthHandler(selection.Provider(), promptManager, selection.Tier())
	healthHandler.AddProbe("store", store.probe)

	var (
		publisher interview.Publisher
		locker    handlers.SessionLocker = handlers.NewLocalLocker()
		rdb       *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		publisher = events.NewRedisPublisher(rdb, cfg.EventsChannel, logger)
		locker = handlers.NewRedisLocker(rdb, cfg.SessionLockTTL, logger)
		healthHandler.AddProbe("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		logger.Info("Redis enabled for session locks and completion events", zap.String("addr", cfg.RedisAddr))
	}

	engine := interview.NewEngine(interview.Deps{
		Store:    store.store,
		Provider: selection.Provider(),
		Prompts:  promptManager,
		Timeouts: interview.Timeouts{
			FirstQuestion: cfg.Timeouts.FirstQuestion,
			NextQuestion:  cfg.Timeouts.NextQuestion,
			Evaluation:    cfg.Timeouts.Evaluation,
		},
		Publisher: publisher,
		Stages:    serviceMetrics,
		Logger:    logger,
	})
	interviewHandler := handlers.NewInterviewHandler(engine, locker, logger)

	scheduler := jobs.NewScheduler(logger, 10*time.Minute)
	if err := scheduler.Schedule(cfg.Jobs.AbandonSchedule,
		jobs.NewAbandonSweeperJob(store.store, cfg.Jobs.AbandonAfter, logger, serviceMetrics)); err != nil {
		logger.Fatal("Failed to schedule abandon sweeper", zap.Error(err))
	}
	if cfg.Jobs.ExportEnabled {
		exporter := jobs.NewTranscriptExporterJob(store.store, jobs.ExporterConfig{
			ExportDir: cfg.Jobs.ExportDirectory,
			BatchSize: cfg.Jobs.ExportBatchSize,
		}, logger, serviceMetrics)
		if err := scheduler.Schedule(cfg.Jobs.ExportSchedule, exporter); err != nil {
			logger.Fatal("Failed to schedule transcript exporter", zap.Error(err))
		}
	}
	scheduler.Start()

	router := newRouter(cfg, serviceMetrics, registry, interviewHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout(cfg) + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	scheduler.Stop(ctx)

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if err := store.close(ctx); err != nil {
		logger.Warn("Failed to close session store", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
