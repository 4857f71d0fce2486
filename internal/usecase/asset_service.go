package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/hszk-dev/mediavault/internal/config"
	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
)

// AssetService defines the interface for asset read operations.
type AssetService interface {
	// ListAssets returns all assets ordered newest-first.
	ListAssets(ctx context.Context) ([]*model.MediaAsset, error)

	// GetAsset retrieves an asset without side effects.
	GetAsset(ctx context.Context, videoID string) (*model.MediaAsset, error)

	// ViewAsset retrieves an asset and increments its view count by
	// exactly one as a side effect.
	ViewAsset(ctx context.Context, videoID string) (*model.MediaAsset, error)

	// ThumbnailURLs resolves the URLs for an asset's thumbnails, in index
	// order. The URL form depends on the configured delivery mode.
	ThumbnailURLs(ctx context.Context, asset *model.MediaAsset) ([]string, error)
}

// AssetServiceConfig holds configuration for AssetService.
type AssetServiceConfig struct {
	// Delivery selects direct proxy URLs or presigned store URLs.
	Delivery config.DeliveryMode
	// PresignExpiry is the lifetime of presigned thumbnail URLs.
	PresignExpiry time.Duration
}

// DefaultAssetServiceConfig returns the default configuration.
func DefaultAssetServiceConfig() AssetServiceConfig {
	return AssetServiceConfig{
		Delivery:      config.DeliveryDirect,
		PresignExpiry: 15 * time.Minute,
	}
}

type assetService struct {
	repo    repository.AssetRepository
	storage repository.ObjectStorage

	delivery      config.DeliveryMode
	presignExpiry time.Duration
}

// NewAssetService creates a new AssetService instance.
func NewAssetService(
	repo repository.AssetRepository,
	storage repository.ObjectStorage,
	cfg AssetServiceConfig,
) AssetService {
	return &assetService{
		repo:          repo,
		storage:       storage,
		delivery:      cfg.Delivery,
		presignExpiry: cfg.PresignExpiry,
	}
}

// ListAssets returns all assets ordered newest-first.
func (s *assetService) ListAssets(ctx context.Context) ([]*model.MediaAsset, error) {
	return s.repo.List(ctx)
}

// GetAsset retrieves an asset by video ID without touching the view count.
func (s *assetService) GetAsset(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	return s.repo.GetByVideoID(ctx, videoID)
}

// ViewAsset retrieves an asset and increments its view count atomically.
func (s *assetService) ViewAsset(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	return s.repo.IncrementViewCount(ctx, videoID)
}

// ThumbnailURLs resolves thumbnail URLs in 1-based index order.
// Direct mode serves thumbnails through the API; presigned mode hands out
// time-limited store URLs. Both policies expose the same stored objects.
func (s *assetService) ThumbnailURLs(ctx context.Context, asset *model.MediaAsset) ([]string, error) {
	urls := make([]string, 0, asset.ThumbnailCount)

	for n := 1; n <= asset.ThumbnailCount; n++ {
		if s.delivery == config.DeliveryPresigned {
			u, err := s.storage.PresignedGetURL(ctx, asset.ThumbnailKey(n), s.presignExpiry)
			if err != nil {
				return nil, fmt.Errorf("presign thumbnail %d: %w", n, err)
			}
			urls = append(urls, u)
			continue
		}
		urls = append(urls, fmt.Sprintf("/api/thumbnails/%s/%d", asset.VideoID, n))
	}

	return urls, nil
}
