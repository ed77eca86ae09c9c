package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"instavibe/internal/config"
	"instavibe/internal/database"
	"instavibe/internal/export"
	"instavibe/internal/gemini"
	"instavibe/internal/metrics"
	"instavibe/internal/storage"
	"instavibe/internal/tasks"
	"instavibe/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	// Image generation and export both drive a single upstream or browser
	// session, so the worker processes one task at a time.
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 1,
	})

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, logger, gemini.Options{
		BaseURL: cfg.Gemini.BaseURL,
	})
	renderer := export.NewRenderer(logger, cfg.Export.PrintPageURL)
	fonts := export.NewFontProvider()

	exportHandler := worker.NewExportTaskHandler(db, storageClient, redisClient, renderer, fonts, logger)
	imageHandler := worker.NewImageBatchTaskHandler(db, storageClient, redisClient, geminiClient, logger, cfg.Gemini.ImageDelay())

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeCarouselExport, exportHandler)
	mux.Handle(tasks.TypeImageBatch, imageHandler)

	logger.Info("worker service started", slog.String("redis_addr", redisAddr))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
