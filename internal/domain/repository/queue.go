package repository

import (
	"context"
	"time"
)

// IngestEvent announces a committed ingestion run. It is published after the
// asset record is persisted and consumed by the reconciliation worker.
type IngestEvent struct {
	VideoID        string    `json:"video_id"`
	VideoKey       string    `json:"video_key"`
	ThumbnailCount int       `json:"thumbnail_count"`
	IngestedAt     time.Time `json:"ingested_at"`
}

// MessageQueue defines the interface for ingest event messaging.
// Implementations are provided by the infrastructure layer (RabbitMQ).
type MessageQueue interface {
	// PublishIngestEvent sends an ingest event to the queue.
	PublishIngestEvent(ctx context.Context, event IngestEvent) error

	// ConsumeIngestEvents consumes ingest events, invoking handler for each.
	// Blocks until the context is cancelled or the channel closes.
	ConsumeIngestEvents(ctx context.Context, handler func(event IngestEvent) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
