package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/infrastructure/metrics"
)

const (
	// assetCacheKeyPrefix is the prefix for asset cache keys in Redis.
	assetCacheKeyPrefix = "asset:"
)

// assetJSON is the JSON representation of a MediaAsset for caching.
// Using an explicit struct avoids coupling to the domain model's fields.
type assetJSON struct {
	ID              int64   `json:"id"`
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	StoredFilename  string  `json:"stored_filename"`
	DurationSeconds float64 `json:"duration_seconds"`
	ThumbnailCount  int     `json:"thumbnail_count"`
	ViewCount       int64   `json:"view_count"`
	CreatedAt       string  `json:"created_at"`
}

// RedisAssetCache implements AssetCache using Redis as the backing store.
type RedisAssetCache struct {
	client *redis.Client
}

// Compile-time verification that RedisAssetCache implements AssetCache.
var _ AssetCache = (*RedisAssetCache)(nil)

// NewRedisAssetCache creates a new Redis-backed asset cache.
func NewRedisAssetCache(client *redis.Client) *RedisAssetCache {
	return &RedisAssetCache{
		client: client,
	}
}

// Get retrieves an asset from Redis cache.
// Returns nil, nil on cache miss.
func (c *RedisAssetCache) Get(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	key := c.buildKey(videoID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeRedis).Inc()
			return nil, nil // Cache miss
		}
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	asset, err := c.deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("deserialize asset: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeRedis).Inc()
	return asset, nil
}

// Set stores an asset in Redis cache with the specified TTL.
func (c *RedisAssetCache) Set(ctx context.Context, asset *model.MediaAsset, ttl time.Duration) error {
	key := c.buildKey(asset.VideoID)

	data, err := c.serialize(asset)
	if err != nil {
		return fmt.Errorf("serialize asset: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	return nil
}

// Delete removes an asset from Redis cache.
func (c *RedisAssetCache) Delete(ctx context.Context, videoID string) error {
	key := c.buildKey(videoID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	return nil
}

// buildKey constructs the Redis key for an asset.
func (c *RedisAssetCache) buildKey(videoID string) string {
	return assetCacheKeyPrefix + videoID
}

// serialize converts a MediaAsset to JSON bytes.
func (c *RedisAssetCache) serialize(asset *model.MediaAsset) ([]byte, error) {
	a := assetJSON{
		ID:              asset.ID,
		VideoID:         asset.VideoID,
		Title:           asset.Title,
		Description:     asset.Description,
		StoredFilename:  asset.StoredFilename,
		DurationSeconds: asset.DurationSeconds,
		ThumbnailCount:  asset.ThumbnailCount,
		ViewCount:       asset.ViewCount,
		CreatedAt:       asset.CreatedAt.Format(time.RFC3339Nano),
	}
	return json.Marshal(a)
}

// deserialize converts JSON bytes to a MediaAsset.
func (c *RedisAssetCache) deserialize(data []byte) (*model.MediaAsset, error) {
	var a assetJSON
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &model.MediaAsset{
		ID:              a.ID,
		VideoID:         a.VideoID,
		Title:           a.Title,
		Description:     a.Description,
		StoredFilename:  a.StoredFilename,
		DurationSeconds: a.DurationSeconds,
		ThumbnailCount:  a.ThumbnailCount,
		ViewCount:       a.ViewCount,
		CreatedAt:       createdAt,
	}, nil
}
