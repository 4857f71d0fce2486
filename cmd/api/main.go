package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/mediavault/internal/api/handler"
	"github.com/hszk-dev/mediavault/internal/api/middleware"
	"github.com/hszk-dev/mediavault/internal/config"
	"github.com/hszk-dev/mediavault/internal/infrastructure/cache"
	"github.com/hszk-dev/mediavault/internal/infrastructure/postgres"
	"github.com/hszk-dev/mediavault/internal/infrastructure/queue"
	"github.com/hszk-dev/mediavault/internal/infrastructure/storage"
	"github.com/hszk-dev/mediavault/internal/media"
	"github.com/hszk-dev/mediavault/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Media.TempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:           cfg.MinIO.Endpoint,
		PublicEndpoint:     cfg.MinIO.PublicEndpoint,
		AccessKey:          cfg.MinIO.AccessKey,
		SecretKey:          cfg.MinIO.SecretKey,
		Bucket:             cfg.MinIO.Bucket,
		UseSSL:             cfg.MinIO.UseSSL,
		PublicRead:         cfg.MinIO.DeliveryMode() == config.DeliveryDirect,
		MultipartThreshold: cfg.MinIO.MultipartThreshold,
		PartSize:           cfg.MinIO.PartSize,
		PartConcurrency:    cfg.MinIO.PartConcurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO", slog.String("bucket", storageClient.Bucket()))

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer func() { _ = queueClient.Close() }()
	logger.Info("connected to RabbitMQ")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	prober := media.NewFFprobeProber(media.FFprobeConfig{
		FFprobePath: cfg.Media.FFprobePath,
	})
	thumbnailer := media.NewFFmpegThumbnailer(media.FFmpegThumbnailerConfig{
		FFmpegPath: cfg.Media.FFmpegPath,
		Count:      cfg.Media.ThumbnailCount,
		Width:      cfg.Media.ThumbnailWidth,
		Height:     cfg.Media.ThumbnailHeight,
	})

	assetRepo := postgres.NewAssetRepository(pgClient.Pool())
	assetCache := cache.NewRedisAssetCache(redisClient)

	ingestSvc := usecase.NewIngestService(
		assetRepo,
		storageClient,
		queueClient,
		prober,
		thumbnailer,
		usecase.IngestServiceConfig{
			ProbeTimeout:     cfg.Media.ProbeTimeout,
			ThumbnailTimeout: cfg.Media.ThumbnailTimeout,
		},
	)

	assetSvc := usecase.NewAssetService(assetRepo, storageClient, usecase.AssetServiceConfig{
		Delivery:      cfg.MinIO.DeliveryMode(),
		PresignExpiry: cfg.MinIO.PresignExpiry,
	})
	assetSvc = usecase.NewCachedAssetService(assetSvc, assetCache, usecase.CachedAssetServiceConfig{
		CacheTTL: cfg.Redis.CacheTTL,
	})

	assetHandler := handler.NewAssetHandler(
		ingestSvc,
		assetSvc,
		storageClient,
		cfg.Media.TempDir,
		cfg.Server.MaxUploadBytes,
	)
	streamHandler := handler.NewStreamHandler(
		assetSvc,
		storageClient,
		cfg.MinIO.DeliveryMode(),
		cfg.MinIO.PresignExpiry,
	)
	healthHandler := handler.NewHealthHandler(
		handler.HealthCheck{Name: "postgres", Pinger: pgClient},
		handler.HealthCheck{Name: "minio", Pinger: storageClient},
		handler.HealthCheck{Name: "redis", Pinger: pingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})},
	)

	r := setupRouter(logger, assetHandler, streamHandler, healthHandler)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays unset by default; large streams outlive any
		// fixed per-request deadline.
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// pingerFunc adapts a function to the handler.Pinger interface.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func setupRouter(
	logger *slog.Logger,
	assets *handler.AssetHandler,
	stream *handler.StreamHandler,
	health *handler.HealthHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)

	r.Get("/health", health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", assets.Upload)
		r.Get("/videos", assets.List)
		r.Get("/videos/{videoId}", assets.Get)
		r.Get("/stream/{videoId}", stream.Stream)
		r.Get("/thumbnails/{videoId}/{n}", assets.Thumbnail)
	})

	return r
}
