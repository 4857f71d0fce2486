package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/infrastructure/cache"
	"github.com/hszk-dev/mediavault/internal/infrastructure/metrics"
)

// CachedAssetServiceConfig holds configuration for CachedAssetService.
type CachedAssetServiceConfig struct {
	// CacheTTL is the TTL for cached asset metadata.
	CacheTTL time.Duration
}

// DefaultCachedAssetServiceConfig returns the default configuration.
func DefaultCachedAssetServiceConfig() CachedAssetServiceConfig {
	return CachedAssetServiceConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// cachedAssetService wraps AssetService with caching.
// It implements the decorator pattern so the underlying service stays
// unaware of the cache.
type cachedAssetService struct {
	delegate AssetService
	cache    cache.AssetCache
	sfGroup  singleflight.Group

	cacheTTL time.Duration
}

// NewCachedAssetService creates a CachedAssetService wrapping the provided AssetService.
func NewCachedAssetService(
	delegate AssetService,
	assetCache cache.AssetCache,
	cfg CachedAssetServiceConfig,
) AssetService {
	return &cachedAssetService{
		delegate: delegate,
		cache:    assetCache,
		cacheTTL: cfg.CacheTTL,
	}
}

// ListAssets delegates to the underlying service. The listing is dominated
// by the newest uploads and changes on every ingest, so it is not cached.
func (s *cachedAssetService) ListAssets(ctx context.Context) ([]*model.MediaAsset, error) {
	return s.delegate.ListAssets(ctx)
}

// GetAsset retrieves an asset with cache-aside reads.
// Uses singleflight to prevent cache stampede on concurrent requests for
// the same asset.
func (s *cachedAssetService) GetAsset(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	result, err, shared := s.sfGroup.Do(videoID, func() (any, error) {
		return s.getAssetWithCache(ctx, videoID)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}

	return result.(*model.MediaAsset), nil
}

// ViewAsset delegates the atomic increment, then refreshes the cache entry
// so subsequent reads observe the new count rather than a stale one.
func (s *cachedAssetService) ViewAsset(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	asset, err := s.delegate.ViewAsset(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, asset, s.cacheTTL); err != nil {
		// Cache refresh failure is non-critical; the entry expires by TTL.
		slog.Warn("failed to refresh cached asset after view",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
	}

	return asset, nil
}

// ThumbnailURLs delegates to the underlying service. Presigned URLs are
// time-limited and must not be served from cache.
func (s *cachedAssetService) ThumbnailURLs(ctx context.Context, asset *model.MediaAsset) ([]string, error) {
	return s.delegate.ThumbnailURLs(ctx, asset)
}

// getAssetWithCache implements the cache-aside pattern.
func (s *cachedAssetService) getAssetWithCache(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	asset, err := s.cache.Get(ctx, videoID)
	if err != nil {
		// Log cache error but continue to the database
		slog.Warn("cache get failed, falling back to database",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
	}

	if asset != nil {
		return asset, nil // Cache hit
	}

	// Cache miss - fetch from the database
	asset, err = s.delegate.GetAsset(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, asset, s.cacheTTL); err != nil {
		slog.Warn("failed to cache asset",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
	}

	return asset, nil
}
