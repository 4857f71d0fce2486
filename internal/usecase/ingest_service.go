package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
	"github.com/hszk-dev/mediavault/internal/infrastructure/metrics"
	"github.com/hszk-dev/mediavault/internal/media"
)

var (
	// ErrTempFileNotFound is returned when the uploaded temp file is missing
	// before any processing starts.
	ErrTempFileNotFound = errors.New("temp file does not exist")
)

// IngestInput contains the input parameters for an ingestion run.
// TempPath must point to a fully written per-upload temp file whose base
// name (minus extension) becomes the asset's video ID.
type IngestInput struct {
	TempPath    string
	Title       string
	Description string
}

// IngestService defines the interface for the ingestion pipeline.
type IngestService interface {
	// Ingest runs the full pipeline: probe, thumbnails, uploads, record
	// persistence. The temp file and thumbnail directory are removed on
	// every exit path. No step is retried; objects uploaded before a
	// failing step are not rolled back.
	Ingest(ctx context.Context, input IngestInput) (*model.MediaAsset, error)
}

// IngestServiceConfig holds configuration for IngestService.
type IngestServiceConfig struct {
	// ProbeTimeout bounds the metadata probe step. Zero means no bound.
	ProbeTimeout time.Duration
	// ThumbnailTimeout bounds the frame extraction step. Zero means no bound.
	ThumbnailTimeout time.Duration
}

// DefaultIngestServiceConfig returns the default configuration.
func DefaultIngestServiceConfig() IngestServiceConfig {
	return IngestServiceConfig{
		ProbeTimeout:     30 * time.Second,
		ThumbnailTimeout: 60 * time.Second,
	}
}

type ingestService struct {
	repo        repository.AssetRepository
	storage     repository.ObjectStorage
	queue       repository.MessageQueue
	prober      media.Prober
	thumbnailer media.Thumbnailer

	probeTimeout     time.Duration
	thumbnailTimeout time.Duration
}

// NewIngestService creates a new IngestService instance.
func NewIngestService(
	repo repository.AssetRepository,
	storage repository.ObjectStorage,
	queue repository.MessageQueue,
	prober media.Prober,
	thumbnailer media.Thumbnailer,
	cfg IngestServiceConfig,
) IngestService {
	return &ingestService{
		repo:             repo,
		storage:          storage,
		queue:            queue,
		prober:           prober,
		thumbnailer:      thumbnailer,
		probeTimeout:     cfg.ProbeTimeout,
		thumbnailTimeout: cfg.ThumbnailTimeout,
	}
}

// Ingest runs the pipeline in strict order:
// validate, probe, thumbnails, video upload, thumbnail uploads in index
// order, record persistence (the single commit point), event publication.
//
// Known gap, carried deliberately: objects uploaded before a failing step
// remain in the object store. The post-ingest reconciliation sweep observes
// such orphans; nothing compensates here.
func (s *ingestService) Ingest(ctx context.Context, input IngestInput) (asset *model.MediaAsset, err error) {
	start := time.Now()

	videoID := videoIDFromTempPath(input.TempPath)
	thumbDir := thumbnailDir(input.TempPath, videoID)

	// Temp resources are released on every exit path, success or failure,
	// regardless of which step failed. Registered before validation so a
	// rejected input never strands its spooled file.
	defer func() {
		if rmErr := os.Remove(input.TempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("failed to remove temp file",
				slog.String("video_id", videoID),
				slog.String("path", input.TempPath),
				slog.String("error", rmErr.Error()),
			)
		}
		if rmErr := os.RemoveAll(thumbDir); rmErr != nil {
			slog.Warn("failed to remove thumbnail directory",
				slog.String("video_id", videoID),
				slog.String("path", thumbDir),
				slog.String("error", rmErr.Error()),
			)
		}
	}()

	if err := s.validate(input); err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.IngestStatusValidationError).Inc()
		return nil, err
	}

	probe, err := s.probe(ctx, input.TempPath)
	if err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.IngestStatusProbeError).Inc()
		return nil, fmt.Errorf("probe: %w", err)
	}

	thumbs, err := s.generateThumbnails(ctx, input.TempPath, thumbDir, probe.DurationSeconds)
	if err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.IngestStatusThumbnailError).Inc()
		return nil, fmt.Errorf("generate thumbnails: %w", err)
	}

	if err := s.uploadVideo(ctx, videoID, input.TempPath); err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.IngestStatusUploadError).Inc()
		return nil, fmt.Errorf("upload video: %w", err)
	}

	if err := s.uploadThumbnails(ctx, videoID, thumbs); err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.IngestStatusUploadError).Inc()
		return nil, fmt.Errorf("upload thumbnails: %w", err)
	}

	asset, err = model.NewMediaAsset(videoID, input.Title, input.Description, probe.DurationSeconds, len(thumbs))
	if err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.IngestStatusValidationError).Inc()
		return nil, err
	}

	// Single commit point. No partial record is ever persisted.
	if err := s.repo.Create(ctx, asset); err != nil {
		metrics.IngestTotal.WithLabelValues(metrics.IngestStatusPersistError).Inc()
		return nil, fmt.Errorf("persist asset: %w", err)
	}

	s.publishEvent(ctx, asset)

	metrics.IngestTotal.WithLabelValues(metrics.IngestStatusSuccess).Inc()
	metrics.IngestDurationSeconds.Observe(time.Since(start).Seconds())

	slog.Info("ingestion completed",
		slog.String("video_id", asset.VideoID),
		slog.Float64("duration_seconds", asset.DurationSeconds),
		slog.Int("thumbnail_count", asset.ThumbnailCount),
	)

	return asset, nil
}

// validate enforces ingestion preconditions before any processing or side
// effects take place.
func (s *ingestService) validate(input IngestInput) error {
	if input.Title == "" {
		return model.ErrEmptyTitle
	}
	if len(input.Title) > 255 {
		return model.ErrTitleTooLong
	}

	info, err := os.Stat(input.TempPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrTempFileNotFound, input.TempPath)
		}
		return fmt.Errorf("stat temp file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrTempFileNotFound, input.TempPath)
	}

	return nil
}

func (s *ingestService) probe(ctx context.Context, path string) (*media.ProbeResult, error) {
	if s.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.probeTimeout)
		defer cancel()
	}
	return s.prober.Probe(ctx, path)
}

func (s *ingestService) generateThumbnails(ctx context.Context, inputPath, outDir string, duration float64) ([]string, error) {
	if s.thumbnailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.thumbnailTimeout)
		defer cancel()
	}
	return s.thumbnailer.Generate(ctx, inputPath, outDir, duration)
}

// uploadVideo streams the temp file into the object store under the stable
// video key. Size is taken from the file so the storage layer can pick its
// single-shot vs multipart strategy.
func (s *ingestService) uploadVideo(ctx context.Context, videoID, tempPath string) error {
	file, err := os.Open(tempPath)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat temp file: %w", err)
	}

	key := model.VideoObjectKey(videoID)
	if err := s.storage.Upload(ctx, key, file, info.Size(), "video/mp4"); err != nil {
		return fmt.Errorf("storage upload %s: %w", key, err)
	}

	return nil
}

// uploadThumbnails uploads frames in ascending index order so that the
// persisted thumbnail count always matches a stored 1..N prefix.
func (s *ingestService) uploadThumbnails(ctx context.Context, videoID string, paths []string) error {
	for i, p := range paths {
		n := i + 1
		file, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open thumbnail %d: %w", n, err)
		}

		info, err := file.Stat()
		if err != nil {
			_ = file.Close()
			return fmt.Errorf("stat thumbnail %d: %w", n, err)
		}

		key := model.ThumbnailObjectKey(videoID, n)
		err = s.storage.Upload(ctx, key, file, info.Size(), "image/jpeg")
		_ = file.Close()
		if err != nil {
			return fmt.Errorf("storage upload %s: %w", key, err)
		}
	}

	return nil
}

// publishEvent announces the committed ingestion. Publication is best
// effort; the record is already durable and a lost event only skips one
// reconciliation check.
func (s *ingestService) publishEvent(ctx context.Context, asset *model.MediaAsset) {
	if s.queue == nil {
		return
	}

	event := repository.IngestEvent{
		VideoID:        asset.VideoID,
		VideoKey:       asset.VideoKey(),
		ThumbnailCount: asset.ThumbnailCount,
		IngestedAt:     asset.CreatedAt,
	}
	if err := s.queue.PublishIngestEvent(ctx, event); err != nil {
		slog.Warn("failed to publish ingest event",
			slog.String("video_id", asset.VideoID),
			slog.String("error", err.Error()),
		)
	}
}

// videoIDFromTempPath derives the video ID from the generated temp
// filename. Temp names are minted per upload, so the ID is unique per
// upload instance even for identical titles.
func videoIDFromTempPath(tempPath string) string {
	base := filepath.Base(tempPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// thumbnailDir returns the per-upload thumbnail working directory, keyed by
// video ID so concurrent uploads never collide.
func thumbnailDir(tempPath, videoID string) string {
	return filepath.Join(filepath.Dir(tempPath), videoID+"_thumbs")
}
