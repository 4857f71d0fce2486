package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hszk-dev/mediavault/internal/domain/model"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
	"github.com/hszk-dev/mediavault/internal/media"
	"github.com/hszk-dev/mediavault/internal/usecase"
)

// Request/Response types

type UploadedVideo struct {
	ID       string  `json:"id"`
	VideoID  string  `json:"videoId"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

type UploadResponse struct {
	Success bool          `json:"success"`
	Video   UploadedVideo `json:"video"`
}

type AssetResponse struct {
	ID             string   `json:"id"`
	VideoID        string   `json:"videoId"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	StoredFilename string   `json:"storedFilename"`
	Duration       float64  `json:"duration"`
	ThumbnailCount int      `json:"thumbnailCount"`
	ViewCount      int64    `json:"viewCount"`
	CreatedAt      string   `json:"createdAt"`
	Thumbnails     []string `json:"thumbnails"`
}

type ListAssetsResponse struct {
	Videos []AssetResponse `json:"videos"`
}

type GetAssetResponse struct {
	Video AssetResponse `json:"video"`
}

const multipartMemoryLimit = 32 << 20

// AssetHandler handles upload and asset read requests.
type AssetHandler struct {
	ingest  usecase.IngestService
	assets  usecase.AssetService
	storage repository.ObjectStorage

	tempDir        string
	maxUploadBytes int64
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(
	ingest usecase.IngestService,
	assets usecase.AssetService,
	storage repository.ObjectStorage,
	tempDir string,
	maxUploadBytes int64,
) *AssetHandler {
	return &AssetHandler{
		ingest:         ingest,
		assets:         assets,
		storage:        storage,
		tempDir:        tempDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload handles POST /api/upload.
// The uploaded file is spooled to a per-upload temp file whose generated
// name becomes the video ID, then handed to the ingestion pipeline.
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		Error(w, http.StatusBadRequest, "Video and title required", "")
		return
	}

	file, _, err := r.FormFile("video")
	if err != nil {
		Error(w, http.StatusBadRequest, "Video and title required", "")
		return
	}
	defer func() { _ = file.Close() }()

	title := r.FormValue("title")
	if title == "" {
		Error(w, http.StatusBadRequest, "Video and title required", "")
		return
	}

	description := r.FormValue("description")

	tempPath, err := h.spoolUpload(file)
	if err != nil {
		slog.Error("failed to spool upload", slog.String("error", err.Error()))
		Error(w, http.StatusInternalServerError, "Upload failed", "could not store uploaded file")
		return
	}

	asset, err := h.ingest.Ingest(r.Context(), usecase.IngestInput{
		TempPath:    tempPath,
		Title:       title,
		Description: description,
	})
	if err != nil {
		h.handleIngestError(w, err)
		return
	}

	JSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Video: UploadedVideo{
			ID:       strconv.FormatInt(asset.ID, 10),
			VideoID:  asset.VideoID,
			Title:    asset.Title,
			Duration: asset.DurationSeconds,
		},
	})
}

// List handles GET /api/videos.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.ListAssets(r.Context())
	if err != nil {
		slog.Error("failed to list assets", slog.String("error", err.Error()))
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	videos := make([]AssetResponse, 0, len(assets))
	for _, asset := range assets {
		resp, err := h.toAssetResponse(r, asset)
		if err != nil {
			slog.Error("failed to resolve thumbnails",
				slog.String("video_id", asset.VideoID),
				slog.String("error", err.Error()),
			)
			Error(w, http.StatusInternalServerError, "Internal error", "")
			return
		}
		videos = append(videos, resp)
	}

	JSON(w, http.StatusOK, ListAssetsResponse{Videos: videos})
}

// Get handles GET /api/videos/{videoId}.
// Retrieval increments the view count by exactly one.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	asset, err := h.assets.ViewAsset(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			Error(w, http.StatusNotFound, "Video not found", "")
			return
		}
		slog.Error("failed to get asset",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	resp, err := h.toAssetResponse(r, asset)
	if err != nil {
		slog.Error("failed to resolve thumbnails",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	JSON(w, http.StatusOK, GetAssetResponse{Video: resp})
}

// Thumbnail handles GET /api/thumbnails/{videoId}/{n}.
// Used in direct delivery mode; presigned mode hands out store URLs instead.
func (h *AssetHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		Error(w, http.StatusNotFound, "Thumbnail not found", "")
		return
	}

	asset, err := h.assets.GetAsset(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			Error(w, http.StatusNotFound, "Video not found", "")
			return
		}
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	if n > asset.ThumbnailCount {
		Error(w, http.StatusNotFound, "Thumbnail not found", "")
		return
	}

	reader, err := h.storage.Download(r.Context(), asset.ThumbnailKey(n), nil)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			Error(w, http.StatusNotFound, "Thumbnail not found", "")
			return
		}
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	defer func() { _ = reader.Close() }()

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		// Headers are already out; nothing to do but log the aborted copy.
		slog.Warn("thumbnail transfer aborted",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
	}
}

// spoolUpload writes the multipart file to a freshly named temp file.
// The generated name (a UUID) is what the pipeline derives the video ID
// from, so concurrent uploads with identical titles never collide.
func (h *AssetHandler) spoolUpload(src io.Reader) (string, error) {
	if err := os.MkdirAll(h.tempDir, 0755); err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}

	tempPath := filepath.Join(h.tempDir, uuid.New().String()+".mp4")

	dst, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tempPath, nil
}

func (h *AssetHandler) handleIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrTitleTooLong):
		Error(w, http.StatusBadRequest, "Invalid title", "title exceeds 255 characters")
	case errors.Is(err, model.ErrEmptyTitle),
		errors.Is(err, usecase.ErrTempFileNotFound):
		Error(w, http.StatusBadRequest, "Video and title required", "")
	case errors.Is(err, media.ErrProbeFailed):
		Error(w, http.StatusInternalServerError, "Upload failed", "could not read video metadata")
	case errors.Is(err, media.ErrThumbnailFailed):
		Error(w, http.StatusInternalServerError, "Upload failed", "could not generate thumbnails")
	case errors.Is(err, repository.ErrDuplicateAsset):
		Error(w, http.StatusInternalServerError, "Upload failed", "video already exists")
	default:
		Error(w, http.StatusInternalServerError, "Upload failed", "could not store video")
	}
}

func (h *AssetHandler) toAssetResponse(r *http.Request, asset *model.MediaAsset) (AssetResponse, error) {
	thumbnails, err := h.assets.ThumbnailURLs(r.Context(), asset)
	if err != nil {
		return AssetResponse{}, err
	}

	return AssetResponse{
		ID:             strconv.FormatInt(asset.ID, 10),
		VideoID:        asset.VideoID,
		Title:          asset.Title,
		Description:    asset.Description,
		StoredFilename: asset.StoredFilename,
		Duration:       asset.DurationSeconds,
		ThumbnailCount: asset.ThumbnailCount,
		ViewCount:      asset.ViewCount,
		CreatedAt:      asset.CreatedAt.Format(time.RFC3339),
		Thumbnails:     thumbnails,
	}, nil
}
