package usecase

import (
	"context"
	"io"
	"time"

	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
	"github.com/hszk-dev/mediavault/internal/media"
)

// mockAssetRepository provides a configurable mock for AssetRepository.
type mockAssetRepository struct {
	createFn             func(ctx context.Context, asset *model.MediaAsset) error
	getByVideoIDFn       func(ctx context.Context, videoID string) (*model.MediaAsset, error)
	listFn               func(ctx context.Context) ([]*model.MediaAsset, error)
	incrementViewCountFn func(ctx context.Context, videoID string) (*model.MediaAsset, error)
}

func (m *mockAssetRepository) Create(ctx context.Context, asset *model.MediaAsset) error {
	if m.createFn != nil {
		return m.createFn(ctx, asset)
	}
	return nil
}

func (m *mockAssetRepository) GetByVideoID(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	if m.getByVideoIDFn != nil {
		return m.getByVideoIDFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockAssetRepository) List(ctx context.Context) ([]*model.MediaAsset, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockAssetRepository) IncrementViewCount(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	if m.incrementViewCountFn != nil {
		return m.incrementViewCountFn(ctx, videoID)
	}
	return nil, nil
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	uploadFn          func(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	downloadFn        func(ctx context.Context, key string, rng *repository.ByteRange) (io.ReadCloser, error)
	statFn            func(ctx context.Context, key string) (repository.ObjectInfo, error)
	existsFn          func(ctx context.Context, key string) (bool, error)
	presignedGetURLFn func(ctx context.Context, key string, expiry time.Duration) (string, error)
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, size, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Download(ctx context.Context, key string, rng *repository.ByteRange) (io.ReadCloser, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, key, rng)
	}
	return nil, nil
}

func (m *mockObjectStorage) Stat(ctx context.Context, key string) (repository.ObjectInfo, error) {
	if m.statFn != nil {
		return m.statFn(ctx, key)
	}
	return repository.ObjectInfo{}, nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockObjectStorage) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.presignedGetURLFn != nil {
		return m.presignedGetURLFn(ctx, key, expiry)
	}
	return "http://example.com/" + key, nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishIngestEventFn  func(ctx context.Context, event repository.IngestEvent) error
	consumeIngestEventsFn func(ctx context.Context, handler func(event repository.IngestEvent) error) error
}

func (m *mockMessageQueue) PublishIngestEvent(ctx context.Context, event repository.IngestEvent) error {
	if m.publishIngestEventFn != nil {
		return m.publishIngestEventFn(ctx, event)
	}
	return nil
}

func (m *mockMessageQueue) ConsumeIngestEvents(ctx context.Context, handler func(event repository.IngestEvent) error) error {
	if m.consumeIngestEventsFn != nil {
		return m.consumeIngestEventsFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	return nil
}

// mockProber provides a configurable mock for media.Prober.
type mockProber struct {
	probeFn func(ctx context.Context, path string) (*media.ProbeResult, error)
}

func (m *mockProber) Probe(ctx context.Context, path string) (*media.ProbeResult, error) {
	if m.probeFn != nil {
		return m.probeFn(ctx, path)
	}
	return &media.ProbeResult{DurationSeconds: 60, FormatName: "mov,mp4", SizeBytes: 1024}, nil
}

// mockThumbnailer provides a configurable mock for media.Thumbnailer.
type mockThumbnailer struct {
	generateFn func(ctx context.Context, inputPath, outputDir string, durationSeconds float64) ([]string, error)
}

func (m *mockThumbnailer) Generate(ctx context.Context, inputPath, outputDir string, durationSeconds float64) ([]string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, inputPath, outputDir, durationSeconds)
	}
	return nil, nil
}

// mockAssetCache provides a configurable mock for cache.AssetCache.
type mockAssetCache struct {
	getFn    func(ctx context.Context, videoID string) (*model.MediaAsset, error)
	setFn    func(ctx context.Context, asset *model.MediaAsset, ttl time.Duration) error
	deleteFn func(ctx context.Context, videoID string) error
}

func (m *mockAssetCache) Get(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	if m.getFn != nil {
		return m.getFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockAssetCache) Set(ctx context.Context, asset *model.MediaAsset, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, asset, ttl)
	}
	return nil
}

func (m *mockAssetCache) Delete(ctx context.Context, videoID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, videoID)
	}
	return nil
}
