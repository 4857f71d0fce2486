package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
	"github.com/hszk-dev/mediavault/internal/infrastructure/metrics"
)

// ReconcileService checks committed ingestions against the object store.
//
// There is no transaction spanning the object store and the record store:
// objects land remotely before the record commits, and a failed run leaves
// already-uploaded objects behind. The sweep makes that gap observable. It
// never mutates state; mismatches are logged and counted only.
type ReconcileService interface {
	// CheckIngestEvent verifies that the record and every object the event
	// announces actually exist. Returns an error only when the check itself
	// could not run (store unreachable); a mismatch is not an error.
	CheckIngestEvent(ctx context.Context, event repository.IngestEvent) error
}

type reconcileService struct {
	repo    repository.AssetRepository
	storage repository.ObjectStorage
}

// NewReconcileService creates a new ReconcileService instance.
func NewReconcileService(
	repo repository.AssetRepository,
	storage repository.ObjectStorage,
) ReconcileService {
	return &reconcileService{
		repo:    repo,
		storage: storage,
	}
}

// CheckIngestEvent verifies record presence, the video object, and every
// thumbnail object named by the persisted count.
func (s *reconcileService) CheckIngestEvent(ctx context.Context, event repository.IngestEvent) error {
	asset, err := s.repo.GetByVideoID(ctx, event.VideoID)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			// The event is published after commit, so a missing record means
			// the store lost it or the event arrived for a foreign deployment.
			metrics.ReconcileChecksTotal.WithLabelValues(metrics.ReconcileError).Inc()
			slog.Error("ingest event for unknown asset",
				slog.String("video_id", event.VideoID),
			)
			return nil
		}
		metrics.ReconcileChecksTotal.WithLabelValues(metrics.ReconcileError).Inc()
		return fmt.Errorf("get asset: %w", err)
	}

	ok, err := s.storage.Exists(ctx, asset.VideoKey())
	if err != nil {
		metrics.ReconcileChecksTotal.WithLabelValues(metrics.ReconcileError).Inc()
		return fmt.Errorf("check video object: %w", err)
	}
	if !ok {
		metrics.ReconcileChecksTotal.WithLabelValues(metrics.ReconcileMissingVideo).Inc()
		slog.Error("video object missing for committed asset",
			slog.String("video_id", asset.VideoID),
			slog.String("key", asset.VideoKey()),
		)
		return nil
	}

	missing := 0
	for n := 1; n <= asset.ThumbnailCount; n++ {
		ok, err := s.storage.Exists(ctx, asset.ThumbnailKey(n))
		if err != nil {
			metrics.ReconcileChecksTotal.WithLabelValues(metrics.ReconcileError).Inc()
			return fmt.Errorf("check thumbnail object %d: %w", n, err)
		}
		if !ok {
			missing++
			slog.Error("thumbnail object missing for committed asset",
				slog.String("video_id", asset.VideoID),
				slog.String("key", model.ThumbnailObjectKey(asset.VideoID, n)),
			)
		}
	}
	if missing > 0 {
		metrics.ReconcileChecksTotal.WithLabelValues(metrics.ReconcileMissingThumbnails).Inc()
		return nil
	}

	metrics.ReconcileChecksTotal.WithLabelValues(metrics.ReconcileConsistent).Inc()
	return nil
}
