package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
	apporder "github.com/josa-ai/verve-noir-app/internal/application/order"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/cache"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/config"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/inference"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/logger"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/persistence"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/telemetry"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/handler"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Verve Noir Matching API
//	@version		1.0
//	@description	Order intake and item-to-product matching for the Verve Noir catalog

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Verve Noir matching service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileCPU:        true,
		ProfileAlloc:      true,
		ProfileInuse:      true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
		if profiler.IsEnabled() {
			tracerProvider.EnableSpanProfiles()
		}
	}

	matchMetrics, err := telemetry.NewMatchMetrics(telemetry.MatchMetricsConfig{
		Meter:  meterProvider.Meter("verve-noir/matching"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create match metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        cfg.Database.Driver,
	}, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	itemRepo := persistence.NewGormOrderItemRepository(db.DB)

	// Item locks
	lockStore, err := cache.NewLockStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create lock store", zap.Error(err))
	}
	defer func() {
		if err := lockStore.Close(); err != nil {
			log.Error("Error closing lock store", zap.Error(err))
		}
	}()

	// Catalog snapshot
	index := appmatching.NewCatalogIndex(productRepo, appmatching.IndexConfig{
		SimilarityThreshold: cfg.Matching.SimilarityThreshold,
		EditDistanceBudget:  cfg.Matching.EditDistanceBudget,
	}, log)
	index.SetMatchMetrics(matchMetrics)
	if err := index.Load(ctx); err != nil {
		// requests answer CATALOG_UNAVAILABLE until a reload succeeds
		log.Error("Initial catalog load failed", zap.Error(err))
	}
	go index.Run(ctx, cfg.Matching.CatalogRefreshInterval)

	// Matching engine
	inferenceClient := inference.NewClient(inference.Config{
		Endpoint:     cfg.Inference.Endpoint,
		APIKey:       cfg.Inference.APIKey,
		Model:        cfg.Inference.Model,
		Timeout:      cfg.Inference.Timeout,
		Retries:      cfg.Inference.Retries,
		RetryBackoff: cfg.Inference.RetryBackoff,
		RateLimit:    cfg.Inference.RateLimit,
		RateBurst:    cfg.Inference.RateBurst,
	}, log)
	aiResolver := appmatching.NewAIResolver(inferenceClient, appmatching.AIConfig{
		Temperature: cfg.Inference.Temperature,
		MaxTokens:   cfg.Inference.MaxTokens,
	})
	aiResolver.SetMatchMetrics(matchMetrics)

	orchestrator := appmatching.NewOrchestrator(
		index,
		aiResolver,
		itemRepo,
		productRepo,
		appmatching.Config{
			Thresholds: matching.Thresholds{
				AutoAccept:  cfg.Matching.AutoAcceptThreshold,
				QuickReview: cfg.Matching.QuickReviewThreshold,
			},
			MaxCandidates: cfg.Matching.MaxAICandidates,
			LockTTL:       cfg.Matching.LockTTL,
		},
		log,
		appmatching.WithLockStore(lockStore),
		appmatching.WithMatchMetrics(matchMetrics),
	)
	lifecycle := appmatching.NewLifecycleManager(orchestrator)
	intake := apporder.NewIntakeService(orderRepo, orchestrator)

	// HTTP
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log)
	if err != nil {
		log.Fatal("Failed to configure HTTP engine", zap.Error(err))
	}
	router.RegisterRoutes(engine, router.Handlers{
		Order:    handler.NewOrderHandler(intake, orchestrator),
		Matching: handler.NewMatchingHandler(orchestrator, lifecycle),
		Catalog:  handler.NewCatalogHandler(index),
		Health:   handler.NewHealthHandler(db, index, cfg.App.Version),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	log.Info("Server exited gracefully")
}
