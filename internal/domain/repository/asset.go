package repository

import (
	"context"

	"github.com/hszk-dev/mediavault/internal/domain/model"
)

// AssetRepository defines the interface for media asset persistence.
// Implementations are provided by the infrastructure layer (PostgreSQL).
type AssetRepository interface {
	// Create persists a new asset and assigns its database ID.
	// Returns ErrDuplicateAsset if the video ID is already taken.
	Create(ctx context.Context, asset *model.MediaAsset) error

	// GetByVideoID retrieves an asset by its video ID.
	// Returns ErrAssetNotFound if no such asset exists.
	GetByVideoID(ctx context.Context, videoID string) (*model.MediaAsset, error)

	// List returns all assets ordered newest-first by creation time.
	List(ctx context.Context) ([]*model.MediaAsset, error)

	// IncrementViewCount atomically increments the view count by one and
	// returns the updated asset. Returns ErrAssetNotFound if absent.
	IncrementViewCount(ctx context.Context, videoID string) (*model.MediaAsset, error)
}
