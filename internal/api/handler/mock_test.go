package handler

import (
	"context"
	"io"
	"time"

	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
	"github.com/hszk-dev/mediavault/internal/usecase"
)

// mockIngestService provides a configurable mock for usecase.IngestService.
type mockIngestService struct {
	ingestFn func(ctx context.Context, input usecase.IngestInput) (*model.MediaAsset, error)
}

func (m *mockIngestService) Ingest(ctx context.Context, input usecase.IngestInput) (*model.MediaAsset, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, input)
	}
	return nil, nil
}

// mockAssetService provides a configurable mock for usecase.AssetService.
type mockAssetService struct {
	listAssetsFn    func(ctx context.Context) ([]*model.MediaAsset, error)
	getAssetFn      func(ctx context.Context, videoID string) (*model.MediaAsset, error)
	viewAssetFn     func(ctx context.Context, videoID string) (*model.MediaAsset, error)
	thumbnailURLsFn func(ctx context.Context, asset *model.MediaAsset) ([]string, error)
}

func (m *mockAssetService) ListAssets(ctx context.Context) ([]*model.MediaAsset, error) {
	if m.listAssetsFn != nil {
		return m.listAssetsFn(ctx)
	}
	return nil, nil
}

func (m *mockAssetService) GetAsset(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	if m.getAssetFn != nil {
		return m.getAssetFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockAssetService) ViewAsset(ctx context.Context, videoID string) (*model.MediaAsset, error) {
	if m.viewAssetFn != nil {
		return m.viewAssetFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockAssetService) ThumbnailURLs(ctx context.Context, asset *model.MediaAsset) ([]string, error) {
	if m.thumbnailURLsFn != nil {
		return m.thumbnailURLsFn(ctx, asset)
	}
	return nil, nil
}

// mockObjectStorage provides a configurable mock for repository.ObjectStorage.
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
	return true, nil
}

func (m *mockObjectStorage) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.presignedGetURLFn != nil {
		return m.presignedGetURLFn(ctx, key, expiry)
	}
	return "http://example.com/" + key, nil
}
