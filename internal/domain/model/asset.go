package model

import (
	"errors"
	"fmt"
	"time"
)

// MediaAsset represents an ingested video and its derived artifacts.
// A record exists only after the full pipeline (probe, thumbnails,
// uploads) has succeeded; it is never created in a partial state.
type MediaAsset struct {
	ID              int64
	VideoID         string
	Title           string
	Description     string
	StoredFilename  string
	DurationSeconds float64
	ThumbnailCount  int
	ViewCount       int64
	CreatedAt       time.Time
}

var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrTitleTooLong  = errors.New("title exceeds maximum length of 255 characters")
	ErrEmptyVideoID  = errors.New("video ID cannot be empty")
	ErrBadDuration   = errors.New("duration cannot be negative")
	ErrBadThumbCount = errors.New("thumbnail count cannot be negative")
)

const maxTitleLength = 255

// NewMediaAsset constructs a MediaAsset at the ingestion commit point.
// thumbnailCount must equal the number of thumbnail objects actually stored.
func NewMediaAsset(videoID, title, description string, durationSeconds float64, thumbnailCount int) (*MediaAsset, error) {
	if videoID == "" {
		return nil, ErrEmptyVideoID
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	if durationSeconds < 0 {
		return nil, ErrBadDuration
	}
	if thumbnailCount < 0 {
		return nil, ErrBadThumbCount
	}

	return &MediaAsset{
		VideoID:         videoID,
		Title:           title,
		Description:     description,
		StoredFilename:  videoID + ".mp4",
		DurationSeconds: durationSeconds,
		ThumbnailCount:  thumbnailCount,
		CreatedAt:       time.Now(),
	}, nil
}

// VideoKey returns the object-store key for the video file.
// The key layout is stable: videos/{videoId}.mp4.
func (a *MediaAsset) VideoKey() string {
	return VideoObjectKey(a.VideoID)
}

// ThumbnailKey returns the object-store key for the nth thumbnail (1-based).
func (a *MediaAsset) ThumbnailKey(n int) string {
	return ThumbnailObjectKey(a.VideoID, n)
}

// VideoObjectKey builds the stable storage key for a video object.
func VideoObjectKey(videoID string) string {
	return fmt.Sprintf("videos/%s.mp4", videoID)
}

// ThumbnailObjectKey builds the stable storage key for a thumbnail object.
// n is the 1-based thumbnail index.
func ThumbnailObjectKey(videoID string, n int) string {
	return fmt.Sprintf("thumbnails/%s/thumb_%d.jpg", videoID, n)
}
