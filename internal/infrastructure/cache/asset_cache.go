package cache

import (
	"context"
	"time"

	"github.com/hszk-dev/mediavault/internal/domain/model"
)

// AssetCache defines the interface for caching asset metadata.
// Implementations handle serialization/deserialization transparently.
type AssetCache interface {
	// Get retrieves an asset from cache by video ID.
	// Returns nil, nil if the asset is not cached (cache miss).
	Get(ctx context.Context, videoID string) (*model.MediaAsset, error)

	// Set stores an asset in cache with the specified TTL.
	Set(ctx context.Context, asset *model.MediaAsset, ttl time.Duration) error

	// Delete removes an asset from cache by video ID.
	// Returns nil if the asset was not in cache.
	Delete(ctx context.Context, videoID string) error
}
