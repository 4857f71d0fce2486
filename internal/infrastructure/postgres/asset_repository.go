package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AssetRepository implements repository.AssetRepository using PostgreSQL.
type AssetRepository struct {
	db DBTX
}

// Compile-time verification that AssetRepository implements repository.AssetRepository.
var _ repository.AssetRepository = (*AssetRepository)(nil)

// NewAssetRepository creates a new AssetRepository instance.
func NewAssetRepository(db DBTX) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = "id, video_id, title, description, stored_filename, duration_seconds, thumbnail_count, view_count, created_at"

// Create persists a new asset and assigns the database ID on success.
func (r *AssetRepository) Create(ctx context.Context, asset *model.MediaAsset) error {
	const query = `
		INSERT INTO media_assets (video_id, title, description, stored_filename, duration_seconds, thumbnail_count, view_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		asset.VideoID,
		asset.Title,
		asset.Description,
		asset.StoredFilename,
		asset.DurationSeconds,
		asset.ThumbnailCount,
		asset.ViewCount,
		asset.CreatedAt,
	).Scan(&asset.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateAsset
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetByVideoID retrieves an asset by its video ID.
func (r *AssetRepository) GetByVideoID(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE video_id = $1`

	asset, err := scanAsset(r.db.QueryRow(ctx, query, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset by video ID: %w", err)
	}

	return asset, nil
}

// List returns all assets ordered newest-first by creation time.
func (r *AssetRepository) List(ctx context.Context) ([]*model.MediaAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM media_assets ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []*model.MediaAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

// IncrementViewCount atomically bumps the view count by one in SQL so that
// concurrent readers never lose an increment, and returns the updated row.
func (r *AssetRepository) IncrementViewCount(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	query := `
		UPDATE media_assets
		SET view_count = view_count + 1
		WHERE video_id = $1
		RETURNING ` + assetColumns

	asset, err := scanAsset(r.db.QueryRow(ctx, query, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to increment view count: %w", err)
	}

	return asset, nil
}

// scanAsset scans a single row into a MediaAsset model.
// pgx.Rows satisfies pgx.Row, so this serves both single- and multi-row scans.
func scanAsset(row pgx.Row) (*model.MediaAsset, error) {
	var asset model.MediaAsset

	err := row.Scan(
		&asset.ID,
		&asset.VideoID,
		&asset.Title,
		&asset.Description,
		&asset.StoredFilename,
		&asset.DurationSeconds,
		&asset.ThumbnailCount,
		&asset.ViewCount,
		&asset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &asset, nil
}
