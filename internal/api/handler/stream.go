package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/mediavault/internal/config"
	"github.com/hszk-dev/mediavault/internal/domain/repository"
	"github.com/hszk-dev/mediavault/internal/infrastructure/metrics"
	"github.com/hszk-dev/mediavault/internal/usecase"
)

// ErrMalformedRange is returned when a Range header cannot be parsed or
// cannot be satisfied against the object size.
var ErrMalformedRange = errors.New("malformed range")

// StreamHandler serves video objects with byte-range support.
//
// In direct mode the handler proxies object bytes, slicing exactly the
// requested window. In presigned mode it redirects to a time-limited store
// URL and delegates range handling to the store; the bytes ultimately
// returned for any given range are the same either way.
type StreamHandler struct {
	assets  usecase.AssetService
	storage repository.ObjectStorage

	delivery      config.DeliveryMode
	presignExpiry time.Duration
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(
	assets usecase.AssetService,
	storage repository.ObjectStorage,
	delivery config.DeliveryMode,
	presignExpiry time.Duration,
) *StreamHandler {
	return &StreamHandler{
		assets:        assets,
		storage:       storage,
		delivery:      delivery,
		presignExpiry: presignExpiry,
	}
}

// Stream handles GET /api/stream/{videoId}.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	asset, err := h.assets.GetAsset(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusNotFound).Inc()
			Error(w, http.StatusNotFound, "Video not found", "")
			return
		}
		metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusError).Inc()
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	key := asset.VideoKey()

	if h.delivery == config.DeliveryPresigned {
		h.redirectPresigned(w, r, key)
		return
	}

	info, err := h.storage.Stat(r.Context(), key)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusNotFound).Inc()
			Error(w, http.StatusNotFound, "Video not found", "")
			return
		}
		metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusError).Inc()
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		h.serveFull(w, r, key, info.Size)
		return
	}

	rng, err := parseByteRange(rangeHeader, info.Size)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusRangeError).Inc()
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", info.Size))
		Error(w, http.StatusRequestedRangeNotSatisfiable, "Invalid range", "")
		return
	}

	h.servePartial(w, r, key, rng, info.Size)
}

// redirectPresigned delegates delivery (including any Range header) to a
// time-limited store URL.
func (h *StreamHandler) redirectPresigned(w http.ResponseWriter, r *http.Request, key string) {
	url, err := h.storage.PresignedGetURL(r.Context(), key, h.presignExpiry)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusError).Inc()
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusRedirect).Inc()
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// serveFull streams the entire object with status 200.
func (h *StreamHandler) serveFull(w http.ResponseWriter, r *http.Request, key string, size int64) {
	reader, err := h.storage.Download(r.Context(), key, nil)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusError).Inc()
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	defer func() { _ = reader.Close() }()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Accept-Ranges", "bytes")
	w.WriteHeader(http.StatusOK)

	metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusFull).Inc()

	if _, err := io.Copy(w, reader); err != nil {
		// Headers are already out; the transfer is simply aborted. A client
		// disconnect cancels the request context, which also terminates the
		// upstream object fetch.
		slog.Warn("stream transfer aborted",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// servePartial streams exactly the requested byte window with status 206.
// The ranged download yields only that window, and CopyN caps the body at
// the advertised length so the response is byte-exact.
func (h *StreamHandler) servePartial(w http.ResponseWriter, r *http.Request, key string, rng repository.ByteRange, size int64) {
	reader, err := h.storage.Download(r.Context(), key, &rng)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusError).Inc()
		Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	defer func() { _ = reader.Close() }()

	length := rng.Length()

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.Header().Set("Content-Type", "video/mp4")
	w.WriteHeader(http.StatusPartialContent)

	metrics.StreamRequestsTotal.WithLabelValues(metrics.StreamStatusPartial).Inc()

	if _, err := io.CopyN(w, reader, length); err != nil {
		slog.Warn("partial stream transfer aborted",
			slog.String("key", key),
			slog.Int64("start", rng.Start),
			slog.Int64("end", rng.End),
			slog.String("error", err.Error()),
		)
	}
}

// parseByteRange parses a "bytes=start-end" header against the object size.
// end is optional and defaults to the last byte; an end past the object is
// clamped to it. Suffix ranges ("bytes=-N"), non-numeric bounds,
// start > end, and start beyond the object all fail with ErrMalformedRange.
func parseByteRange(header string, size int64) (repository.ByteRange, error) {
	const prefix = "bytes="

	if !strings.HasPrefix(header, prefix) {
		return repository.ByteRange{}, fmt.Errorf("%w: %q", ErrMalformedRange, header)
	}

	spec := strings.TrimPrefix(header, prefix)
	startStr, endStr, found := strings.Cut(spec, "-")
	if !found || startStr == "" {
		return repository.ByteRange{}, fmt.Errorf("%w: %q", ErrMalformedRange, header)
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return repository.ByteRange{}, fmt.Errorf("%w: bad start in %q", ErrMalformedRange, header)
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return repository.ByteRange{}, fmt.Errorf("%w: bad end in %q", ErrMalformedRange, header)
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start >= size {
		return repository.ByteRange{}, fmt.Errorf("%w: start %d beyond size %d", ErrMalformedRange, start, size)
	}
	if start > end {
		return repository.ByteRange{}, fmt.Errorf("%w: start %d after end %d", ErrMalformedRange, start, end)
	}

	return repository.ByteRange{Start: start, End: end}, nil
}
