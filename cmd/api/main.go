// Package main is the entry point for the SmartLivingAdvisor API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/api"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/artifact"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/cache"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/config"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/health"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/middleware"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/ranking"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/recommend"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/store"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/tracing"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("SmartLivingAdvisor API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	ctx := context.Background()

	// Tracing
	tracer, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "smartliving-api",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	repo := store.NewPostgresRepository(db)

	// Redis cache (optional)
	var redisClient *redis.Client
	var recCache *cache.RecommendationCache
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		recCache = cache.New(redisClient, cfg.CacheTTL, logger)
		logger.Info("recommendation cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	// Artifact store: S3 when configured, else local filesystem, else none.
	var artifactStore artifact.Store
	switch {
	case cfg.S3Configured():
		artifactStore, err = artifact.NewS3Store(artifact.S3Config{
			BucketName:      cfg.S3BucketName,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Error("failed to initialize S3 artifact store", "error", err)
			os.Exit(1)
		}
		logger.Info("artifact store enabled", "backend", "s3", "bucket", cfg.S3BucketName)
	case cfg.ArtifactDir != "":
		artifactStore, err = artifact.NewFSStore(cfg.ArtifactDir)
		if err != nil {
			logger.Error("failed to initialize filesystem artifact store", "error", err)
			os.Exit(1)
		}
		logger.Info("artifact store enabled", "backend", "fs", "dir", cfg.ArtifactDir)
	}

	// Blend weights, with optional calibration overrides.
	weights, err := ranking.LoadCalibration(cfg.CalibrationFile)
	if err != nil {
		logger.Warn("calibration unavailable, serving with default weights", "error", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := recommend.NewMetrics()
	if err := engineMetrics.Register(registry); err != nil {
		logger.Error("failed to register engine metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics := middleware.NewHTTPMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register HTTP metrics", "error", err)
		os.Exit(1)
	}

	// Engine
	engine := recommend.NewService(repo, weights, recommend.Config{
		NeighborK:     cfg.NeighborK,
		CandidatePool: cfg.CandidatePool,
		MaxCategories: cfg.MaxCategories,
	}, logger, engineMetrics)

	// Warm the first snapshot: prefer a fresh build, fall back to the
	// persisted artifact, otherwise start cold and let the rebuild job
	// keep retrying.
	buildCtx, cancelBuild := context.WithTimeout(ctx, recommend.DefaultRebuildTimeout)
	if err := engine.Rebuild(buildCtx); err != nil {
		logger.Warn("initial rebuild failed", "error", err)
		if artifactStore != nil {
			if restoreErr := engine.RestoreFromArtifact(buildCtx, artifactStore); restoreErr != nil {
				logger.Warn("artifact restore failed, starting without a snapshot", "error", restoreErr)
			} else {
				logger.Info("serving restored snapshot until next rebuild")
			}
		}
	} else if artifactStore != nil {
		if err := engine.SaveArtifact(buildCtx, artifactStore); err != nil {
			logger.Warn("failed to persist initial snapshot artifact", "error", err)
		}
	}
	cancelBuild()

	// Periodic rebuilds
	rebuildJob := recommend.NewRebuildJob(recommend.RebuildJobConfig{
		Interval: cfg.RebuildInterval,
		Timeout:  recommend.DefaultRebuildTimeout,
		Logger:   logger,
	}, engine)
	rebuildJob.Start(ctx)
	defer rebuildJob.Stop()

	// Handlers
	scoreHandlers := api.NewScoreHandlers(engine)
	recHandlers := api.NewRecommendationHandlers(engine, recCache)
	adminHandlers := api.NewAdminHandlers(engine, artifactStore)
	healthConfig := api.HealthHandlersConfig{
		DBChecker: health.NewDBChecker(db),
		Service:   engine,
	}
	if redisClient != nil {
		healthConfig.RedisChecker = health.NewRedisChecker(redisClient)
	}
	healthHandlers := api.NewHealthHandlers(healthConfig)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /properties/{id}/score", scoreHandlers.GetScore)
	mux.HandleFunc("GET /properties/{id}/similar", recHandlers.GetSimilar)
	mux.HandleFunc("POST /recommendations/preferences", recHandlers.PostPreferences)
	mux.HandleFunc("POST /admin/rebuild", adminHandlers.Rebuild)
	mux.HandleFunc("GET /health", healthHandlers.Ready)
	mux.HandleFunc("GET /healthz", healthHandlers.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			errCtx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, errCtx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"smartliving-api","version":"0.0.1"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Apply middleware: RequestID -> Logging -> Metrics -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins})(handler)
	handler = httpMetrics.Instrument(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = tracer.WrapHandler(handler, "smartliving-api")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	rebuildJob.Stop()
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracing", "error", err)
	}

	logger.Info("server stopped")
}
