package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"bankpredict/config"
	qhttp "bankpredict/http"
	"bankpredict/inference"
	"bankpredict/logger"
	"bankpredict/ml"
	"bankpredict/monitoring"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Look for config in root even if run from cmd/
	if _, err := os.Stat(*configPath); os.IsNotExist(err) && !filepath.IsAbs(*configPath) {
		if _, err := os.Stat(filepath.Join("..", *configPath)); err == nil {
			*configPath = filepath.Join("..", *configPath)
		}
	}

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer zl.Sync()

	// 2. Load the classifier once; without it no prediction can be served
	predictor, err := buildPredictor(cfg)
	if err != nil {
		zl.Fatal("failed to initialise predictor",
			zap.String("model_type", cfg.Model.Type),
			zap.String("model_path", cfg.Model.Path),
			zap.Error(err))
	}
	zl.Info("model artifact loaded",
		zap.String("model_type", cfg.Model.Type),
		zap.String("model_path", cfg.Model.Path),
		zap.String("schema_version", predictor.Schema().Version),
		zap.Bool("probability", predictor.SupportsProbability()),
		zap.Int("cache_size", cfg.Cache.Size))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Model.Watch {
		if err := monitoring.WatchArtifact(ctx, cfg.Model.Path, zl); err != nil {
			zl.Warn("artifact watcher disabled", zap.Error(err))
		}
	}

	// 3. Start HTTP server
	server, err := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		ModelType:      cfg.Model.Type,
	}, predictor, zl)
	if err != nil {
		zl.Fatal("failed to create HTTP server", zap.Error(err))
	}
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	if err := server.Stop(); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("exiting")
}

func buildPredictor(cfg *config.Config) (*inference.Predictor, error) {
	tag, err := language.Parse(cfg.Display.Locale)
	if err != nil {
		return nil, err
	}
	classifier, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	return inference.New(classifier,
		inference.WithCacheSize(cfg.Cache.Size),
		inference.WithLocale(tag))
}
