package model

import (
	"errors"
	"strings"
	"testing"
)

func TestNewMediaAsset(t *testing.T) {
	tests := []struct {
		name           string
		videoID        string
		title          string
		description    string
		duration       float64
		thumbnailCount int
		wantErr        error
	}{
		{
			name:           "valid asset",
			videoID:        "abc-123",
			title:          "My Video",
			description:    "about things",
			duration:       120.5,
			thumbnailCount: 10,
		},
		{
			name:    "empty video ID",
			videoID: "",
			title:   "My Video",
			wantErr: ErrEmptyVideoID,
		},
		{
			name:    "empty title",
			videoID: "abc-123",
			title:   "",
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "title at limit",
			videoID: "abc-123",
			title:   strings.Repeat("x", 255),
		},
		{
			name:    "title over limit",
			videoID: "abc-123",
			title:   strings.Repeat("x", 256),
			wantErr: ErrTitleTooLong,
		},
		{
			name:     "negative duration",
			videoID:  "abc-123",
			title:    "My Video",
			duration: -1,
			wantErr:  ErrBadDuration,
		},
		{
			name:           "negative thumbnail count",
			videoID:        "abc-123",
			title:          "My Video",
			thumbnailCount: -1,
			wantErr:        ErrBadThumbCount,
		},
		{
			name:           "zero thumbnails is valid",
			videoID:        "abc-123",
			title:          "Very Short",
			thumbnailCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := NewMediaAsset(tt.videoID, tt.title, tt.description, tt.duration, tt.thumbnailCount)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error %v, expected %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMediaAsset failed: %v", err)
			}

			if asset.VideoID != tt.videoID {
				t.Errorf("VideoID: got %s", asset.VideoID)
			}
			if asset.StoredFilename != tt.videoID+".mp4" {
				t.Errorf("StoredFilename: got %s", asset.StoredFilename)
			}
			if asset.ViewCount != 0 {
				t.Errorf("ViewCount: got %d, expected 0", asset.ViewCount)
			}
			if asset.CreatedAt.IsZero() {
				t.Error("CreatedAt should be set")
			}
		})
	}
}

func TestObjectKeys(t *testing.T) {
	asset := &MediaAsset{VideoID: "abc-123"}

	if got := asset.VideoKey(); got != "videos/abc-123.mp4" {
		t.Errorf("VideoKey: got %q", got)
	}
	if got := asset.ThumbnailKey(1); got != "thumbnails/abc-123/thumb_1.jpg" {
		t.Errorf("ThumbnailKey(1): got %q", got)
	}
	if got := asset.ThumbnailKey(10); got != "thumbnails/abc-123/thumb_10.jpg" {
		t.Errorf("ThumbnailKey(10): got %q", got)
	}

	if got := VideoObjectKey("xyz"); got != "videos/xyz.mp4" {
		t.Errorf("VideoObjectKey: got %q", got)
	}
	if got := ThumbnailObjectKey("xyz", 7); got != "thumbnails/xyz/thumb_7.jpg" {
		t.Errorf("ThumbnailObjectKey: got %q", got)
	}
}
