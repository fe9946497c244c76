package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cineshazam/cineshazam/internal/cache"
	"github.com/cineshazam/cineshazam/internal/config"
	"github.com/cineshazam/cineshazam/internal/corpus"
	"github.com/cineshazam/cineshazam/internal/database"
	"github.com/cineshazam/cineshazam/internal/extract"
	"github.com/cineshazam/cineshazam/internal/identify"
	"github.com/cineshazam/cineshazam/internal/logging"
	"github.com/cineshazam/cineshazam/internal/match"
	"github.com/cineshazam/cineshazam/internal/metrics"
	"github.com/cineshazam/cineshazam/internal/middleware"
	"github.com/cineshazam/cineshazam/internal/queue"
	"github.com/cineshazam/cineshazam/internal/storage"
	"github.com/cineshazam/cineshazam/internal/tracing"
	"github.com/cineshazam/cineshazam/internal/transcribe"
)

// API carries the request handlers' shared dependencies
type API struct {
	cfg      *config.Config
	identify *identify.Service
	repo     *database.Repository
	cache    *cache.Cache
	storage  *storage.Storage
	queue    *queue.Queue
	logger   *logging.Logger
}

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

	logger, err := logging.NewDefaultLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Tracing is optional: a missing collector should not stop the API
	if endpoint := os.Getenv("JAEGER_ENDPOINT"); endpoint != "" {
		_, closer, err := tracing.InitTracer("cineshazam-api", endpoint)
		if err != nil {
			logger.Warnf("Tracing disabled: %v", err)
		} else {
			defer closer.Close()
		}
	}

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

	// Identification pipeline
	accessor := corpus.NewCached(repo, lineCache, cfg.Redis.LinesTTL)
	chain := extract.NewChain(extract.DefaultStrategies(cfg.Extractor), logger)
	audio := transcribe.NewFFmpeg(cfg.Transcriber.FFmpegPath, cfg.Transcriber.FFprobePath, cfg.Transcriber.TempDir)
	transcriber := transcribe.NewWhisperClient(cfg.Transcriber)
	adapter := identify.NewAdapter(transcriber, audio, chain, cfg.Transcriber.WordsPerSecond)
	matcher := match.NewMatcher(accessor, cfg.Matcher)
	ranker := match.NewRanker(cfg.Ranker)
	service := identify.NewService(adapter, matcher, ranker, accessor, logger)

	api := &API{
		cfg:      cfg,
		identify: service,
		repo:     repo,
		cache:    lineCache,
		storage:  stor,
		queue:    q,
		logger:   logger,
	}

	// Metrics server on its own port
	metricsSrv := metrics.NewServer(cfg.Server.MetricsPort)
	go func() {
		if err := metricsSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server failed: %v", err)
		}
	}()

	router := setupRouter(api)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}
	_ = metricsSrv.Shutdown(ctx)

	logger.Info("Server stopped")
}

func setupRouter(api *API) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(api.logger))
	router.MaxMultipartMemory = api.cfg.Server.MaxUploadSize

	rl := middleware.NewRateLimiter(10, 20)

	// Health check
	router.GET("/health", api.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(rl))
	{
		// Identification
		v1.POST("/identify/upload", api.identifyUpload)
		v1.POST("/identify/url", api.identifyURL)
		v1.POST("/identify/text", api.identifyText)

		// Corpus management
		v1.POST("/movies", api.createMovie)
		v1.GET("/movies/:id", api.getMovie)
		v1.GET("/movies", api.listMovies)
	}

	return router
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := api.repo.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
