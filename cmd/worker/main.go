package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hszk-dev/mediavault/internal/config"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
	"github.com/hszk-dev/mediavault/internal/infrastructure/postgres"
	"github.com/hszk-dev/mediavault/internal/infrastructure/queue"
	"github.com/hszk-dev/mediavault/internal/infrastructure/storage"
	"github.com/hszk-dev/mediavault/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

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

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:           cfg.MinIO.Endpoint,
		AccessKey:          cfg.MinIO.AccessKey,
		SecretKey:          cfg.MinIO.SecretKey,
		Bucket:             cfg.MinIO.Bucket,
		UseSSL:             cfg.MinIO.UseSSL,
		// Either binary may bootstrap the bucket on a fresh deploy, so the
		// policy decision must not depend on start order.
		PublicRead:         cfg.MinIO.DeliveryMode() == config.DeliveryDirect,
		MultipartThreshold: cfg.MinIO.MultipartThreshold,
		PartSize:           cfg.MinIO.PartSize,
		PartConcurrency:    cfg.MinIO.PartConcurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer func() { _ = queueClient.Close() }()
	logger.Info("connected to RabbitMQ")

	assetRepo := postgres.NewAssetRepository(pgClient.Pool())
	reconcileSvc := usecase.NewReconcileService(assetRepo, storageClient)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Track in-flight checks so shutdown can wait for them.
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming ingest events")
		err := queueClient.ConsumeIngestEvents(ctx, func(event repository.IngestEvent) error {
			wg.Add(1)
			defer wg.Done()

			logger.Info("checking ingest event",
				slog.String("video_id", event.VideoID),
				slog.Int("thumbnail_count", event.ThumbnailCount),
			)

			if err := reconcileSvc.CheckIngestEvent(ctx, event); err != nil {
				logger.Error("ingest check failed",
					slog.String("video_id", event.VideoID),
					slog.String("error", err.Error()),
				)
				return err
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop consuming new events, then drain in-flight checks.
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight checks completed")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some checks may not have completed")
	}

	logger.Info("worker stopped")
	return nil
}
