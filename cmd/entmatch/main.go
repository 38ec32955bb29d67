package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clearwatch-io/entmatch/internal/catalog"
	"github.com/clearwatch-io/entmatch/internal/config"
	"github.com/clearwatch-io/entmatch/internal/feature"
	"github.com/clearwatch-io/entmatch/internal/index"
	idxRedis "github.com/clearwatch-io/entmatch/internal/index/redis"
	logpkg "github.com/clearwatch-io/entmatch/internal/logger"
	"github.com/clearwatch-io/entmatch/internal/match"
	"github.com/clearwatch-io/entmatch/internal/metrics"
	"github.com/clearwatch-io/entmatch/internal/norm"
	"github.com/clearwatch-io/entmatch/internal/score"
	chiTransport "github.com/clearwatch-io/entmatch/internal/transport/chi"
	healthuc "github.com/clearwatch-io/entmatch/internal/usecase/health"
	screeninguc "github.com/clearwatch-io/entmatch/internal/usecase/screening"
	"github.com/clearwatch-io/entmatch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting entmatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_provider", cfg.Index.Provider),
		zap.Strings("index_addrs", cfg.Index.Addrs),
	)

	// Load and validate the schema catalog before serving anything
	cat, err := catalog.Load()
	if err != nil {
		logger.Fatal("Failed to load schema catalog", zap.Error(err))
	}
	if err := cat.Validate(feature.SupportedValueTypes()); err != nil {
		logger.Fatal("Schema catalog failed validation", zap.Error(err))
	}
	store := catalog.NewStore(cat)
	logger.Info("Schema catalog loaded", zap.Int("schemas", len(cat.Names())))

	normalizer, err := norm.New(cfg.Normalizer.Variant)
	if err != nil {
		logger.Fatal("Unknown normalizer variant", zap.Error(err))
	}

	// Candidate index based on provider
	ctx := context.Background()
	var provider index.Provider
	switch cfg.Index.Provider {
	case "redis":
		rp, err := idxRedis.New(idxRedis.Config{
			Addrs:    cfg.Index.Addrs,
			Username: cfg.Index.Username,
			Password: cfg.Index.Password,
			DB:       cfg.Index.DB,
			Prefix:   cfg.Index.KeyPrefix,
		}, normalizer)
		if err != nil {
			logger.Fatal("Failed to create redis index", zap.Error(err))
		}
		defer rp.Close()

		if err := rp.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis index not ready", zap.Error(err))
		}
		logger.Info("Connected to redis index")
		provider = rp
	case "memory":
		provider = index.NewMemory(normalizer)
		logger.Info("Using in-memory candidate index")
	default:
		logger.Fatal("Unknown index provider", zap.String("provider", cfg.Index.Provider))
	}

	// Register matching metrics explicitly (no init())
	metrics.RegisterMatchMetrics()

	// Algorithm registry; disabling an unknown name is fatal here
	algorithms, err := score.NewSet(cfg.Match.DisabledAlgorithms)
	if err != nil {
		logger.Fatal("Failed to build algorithm set", zap.Error(err))
	}

	matcher := match.New(store, normalizer, algorithms, cfg.Match.Workers)

	screeningSvc := screeninguc.New(provider, matcher, screeninguc.Limits{
		DefaultLimit:    cfg.Match.Limit,
		MaxLimit:        cfg.Match.MaxLimit,
		CandidateFactor: cfg.Match.CandidateFactor,
		QueryWorkers:    cfg.Match.Workers,
		Threshold:       cfg.Match.Threshold,
		Cutoff:          cfg.Match.Cutoff,
	}, cfg.Index.Provider)

	healthSvc := healthuc.New(provider, store)

	server := chiTransport.NewServer(screeningSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
