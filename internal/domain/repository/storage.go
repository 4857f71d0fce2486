package repository

import (
	"context"
	"io"
	"time"
)

// ByteRange describes an inclusive byte window of an object.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStorage defines the interface for durable object storage.
// Implementations are provided by the infrastructure layer (MinIO/S3).
type ObjectStorage interface {
	// Upload stores an object under key. size is the exact object size and
	// drives the single-shot vs multipart upload strategy. A failed multipart
	// upload fails the whole call; parts are not retried.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves an object, optionally restricted to a byte range.
	// A nil rng fetches the whole object. The returned reader yields exactly
	// the requested window; the caller must close it.
	// Returns ErrObjectNotFound if the key has no object.
	Download(ctx context.Context, key string, rng *ByteRange) (io.ReadCloser, error)

	// Stat returns object metadata without fetching the body.
	// Returns ErrObjectNotFound if the key has no object.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// Exists reports whether an object is present under key.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignedGetURL creates a time-limited URL granting direct read access
	// to one object. The store handles any Range header on that URL.
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
