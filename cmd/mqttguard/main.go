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

	"go.uber.org/zap"

	"github.com/kailas-cloud/mqttguard/internal/config"
	"github.com/kailas-cloud/mqttguard/internal/domain/feature"
	logpkg "github.com/kailas-cloud/mqttguard/internal/logger"
	"github.com/kailas-cloud/mqttguard/internal/metrics"
	"github.com/kailas-cloud/mqttguard/internal/model/forest"
	"github.com/kailas-cloud/mqttguard/internal/repository/predcache"
	chiTransport "github.com/kailas-cloud/mqttguard/internal/transport/chi"
	healthuc "github.com/kailas-cloud/mqttguard/internal/usecase/health"
	predictuc "github.com/kailas-cloud/mqttguard/internal/usecase/predict"
	"github.com/kailas-cloud/mqttguard/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mqttguard prediction server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("built", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("admin_port", cfg.HTTP.AdminPort),
		zap.String("model_path", cfg.Model.Path),
	)

	// The service never starts without a usable model.
	model, err := forest.Load(cfg.Model.Path)
	if err != nil {
		logger.Fatal("Failed to load model", zap.Error(err))
	}
	if err := model.CheckSchema(); err != nil {
		logger.Fatal("Model does not match feature schema", zap.Error(err))
	}
	summary := model.Summary()
	logger.Info("Model loaded",
		zap.String("schema", feature.SchemaVersion),
		zap.Int("trees", summary.Trees),
		zap.Int("nodes", summary.Nodes),
		zap.Int("max_depth", summary.MaxDepth),
		zap.Ints("classes", summary.Classes),
		zap.Bool("soft_vote", summary.SoftVote),
	)

	// Register metrics explicitly (no init())
	metrics.Register()
	metrics.SetModelInfo(feature.SchemaVersion, summary.Trees, summary.NFeatures)

	// Build predictor chain: Forest -> Cached -> Instrumented
	var predictor predictuc.Predictor = model

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cacheReporter healthuc.CacheReporter
	if cfg.Cache.Size > 0 {
		cached, err := predcache.New(model, cfg.Cache.Size, metrics.PredictionCacheTotal)
		if err != nil {
			logger.Fatal("Failed to create prediction cache", zap.Error(err))
		}
		predictor = cached
		cacheReporter = cached
		logger.Info("Prediction cache enabled", zap.Int("size", cfg.Cache.Size))
	}
	predictor = predictuc.NewInstrumentedPredictor(predictor, logger)

	// Create use case services
	predictSvc := predictuc.New(predictor).
		WithTimeout(time.Duration(cfg.Model.PredictTimeoutMs) * time.Millisecond)
	healthSvc := healthuc.New(model, cacheReporter)

	// Create chi server
	server := chiTransport.NewServer(predictSvc, healthSvc, logger).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
	servers := []*http.Server{srv}

	if cfg.HTTP.AdminPort > 0 {
		servers = append(servers, &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.AdminPort),
			Handler:      chiTransport.NewAdminRouter(server, logger),
			ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		})
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	for _, s := range servers {
		s := s
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("HTTP server error", zap.String("addr", s.Addr), zap.Error(err))
			}
		}()
	}

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	for _, s := range servers {
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.String("addr", s.Addr), zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
}
