package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cineshazam/cineshazam/internal/cache"
	"github.com/cineshazam/cineshazam/internal/config"
	"github.com/cineshazam/cineshazam/internal/database"
	"github.com/cineshazam/cineshazam/internal/ingest"
	"github.com/cineshazam/cineshazam/internal/logging"
	"github.com/cineshazam/cineshazam/internal/queue"
	"github.com/cineshazam/cineshazam/internal/storage"
	"github.com/cineshazam/cineshazam/pkg/models"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := logging.NewDefaultLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := baseLogger.WithWorkerID(fmt.Sprintf("ingest-%d", os.Getpid()))

	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	lineCache, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer lineCache.Close()

	stor, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subtitle provider sessions expire; a fresh login at startup covers
	// the worker's lifetime for the download volumes involved here
	source := ingest.NewOpenSubtitlesClient(cfg.Ingest)
	if cfg.Ingest.Username != "" {
		if err := source.Login(ctx); err != nil {
			logger.Fatalf("Failed to authenticate with subtitle provider: %v", err)
		}
	}

	loader := ingest.NewLoader(source, repo, stor, lineCache, cfg.Ingest.Language, logger)

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully...")
		cancel()
	}()

	jobHandler := func(job *models.IngestJob) error {
		logger.Infof("Processing ingest job %s for movie %s", job.ID, job.MovieID)

		if err := loader.Process(ctx, job); err != nil {
			logger.Errorf("Failed to process job %s: %v", job.ID, err)
			return err
		}

		logger.Infof("Successfully processed job %s", job.ID)
		return nil
	}

	logger.Info("Worker started, waiting for ingest jobs...")
	if err := q.ConsumeIngestJobs(ctx, jobHandler); err != nil {
		logger.Fatalf("Failed to consume jobs: %v", err)
	}

	<-ctx.Done()
	logger.Info("Worker stopped")
}
