package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hszk-dev/mediavault/internal/domain/repository"
	"github.com/hszk-dev/mediavault/internal/infrastructure/metrics"
)

// objectReader abstracts minio.Object for testability.
// *minio.Object satisfies this interface.
type objectReader interface {
	io.ReadCloser
	Stat() (minio.ObjectInfo, error)
}

// minioClient defines the interface for MinIO operations.
// This abstraction allows for easier unit testing with mocks.
type minioClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucketName, policy string) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// minioClientAdapter wraps *minio.Client to implement minioClient.
// Necessary because *minio.Client.GetObject returns *minio.Object,
// but our interface returns objectReader for testability.
type minioClientAdapter struct {
	client *minio.Client
}

func (a *minioClientAdapter) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return a.client.BucketExists(ctx, bucketName)
}

func (a *minioClientAdapter) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return a.client.MakeBucket(ctx, bucketName, opts)
}

func (a *minioClientAdapter) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	return a.client.SetBucketPolicy(ctx, bucketName, policy)
}

func (a *minioClientAdapter) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return a.client.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

func (a *minioClientAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
	return a.client.GetObject(ctx, bucketName, objectName, opts)
}

func (a *minioClientAdapter) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return a.client.StatObject(ctx, bucketName, objectName, opts)
}

func (a *minioClientAdapter) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	return a.client.PresignedGetObject(ctx, bucketName, objectName, expiry, reqParams)
}

// ClientConfig holds configuration for the MinIO client.
type ClientConfig struct {
	Endpoint       string
	PublicEndpoint string // Optional: external-facing endpoint for presigned URLs
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool

	// PublicRead applies a download-only bucket policy after bootstrap,
	// used when objects are served through direct public URLs.
	PublicRead bool

	// MultipartThreshold is the object size at or above which uploads switch
	// from a single-shot put to a chunked multipart upload.
	MultipartThreshold int64
	// PartSize is the fixed multipart part size in bytes.
	PartSize int64
	// PartConcurrency bounds the number of in-flight parts per upload.
	PartConcurrency uint
}

const (
	// DefaultMultipartThreshold is the size at which uploads go multipart (100 MiB).
	DefaultMultipartThreshold = 100 << 20
	// DefaultPartSize is the fixed multipart part size (100 MiB).
	DefaultPartSize = 100 << 20
	// DefaultPartConcurrency bounds concurrent in-flight parts per upload.
	DefaultPartConcurrency = 4
)

// Client wraps a MinIO client and implements repository.ObjectStorage.
type Client struct {
	client          minioClient
	presignedClient minioClient // Separate client for presigned URLs (may use public endpoint)
	bucket          string

	multipartThreshold int64
	partSize           int64
	partConcurrency    uint
}

// Compile-time verification that Client implements repository.ObjectStorage.
var _ repository.ObjectStorage = (*Client)(nil)

// NewClient creates a new MinIO client.
// It ensures the bucket exists during initialization, creating it if absent,
// so that a fresh deployment needs no manual bootstrap step.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	adapter := &minioClientAdapter{client: client}

	// Create a separate client for presigned URLs if public endpoint is configured
	var presignedAdapter minioClient = adapter
	if cfg.PublicEndpoint != "" {
		presignedClient, err := minio.New(cfg.PublicEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create presigned minio client: %w", err)
		}
		presignedAdapter = &minioClientAdapter{client: presignedClient}
	}

	return newClientWithMinioClient(ctx, adapter, presignedAdapter, cfg)
}

// newClientWithMinioClient creates a Client with a given minioClient implementation.
// This is used for dependency injection in tests.
func newClientWithMinioClient(ctx context.Context, client, presignedClient minioClient, cfg ClientConfig) (*Client, error) {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", repository.ErrBucketNotFound, cfg.Bucket, err)
		}
		if cfg.PublicRead {
			if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
				return nil, fmt.Errorf("failed to set bucket policy: %w", err)
			}
		}
	}

	threshold := cfg.MultipartThreshold
	if threshold <= 0 {
		threshold = DefaultMultipartThreshold
	}
	partSize := cfg.PartSize
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	concurrency := cfg.PartConcurrency
	if concurrency == 0 {
		concurrency = DefaultPartConcurrency
	}

	return &Client{
		client:             client,
		presignedClient:    presignedClient,
		bucket:             cfg.Bucket,
		multipartThreshold: threshold,
		partSize:           partSize,
		partConcurrency:    concurrency,
	}, nil
}

// publicReadPolicy returns a download-only bucket policy document.
func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, bucket)
}

// Upload stores an object in the bucket. Objects below the multipart
// threshold are sent as a single put; larger objects are split into
// fixed-size parts uploaded with bounded concurrency. A failed part fails
// the whole upload; parts are not retried here.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{
		ContentType: contentType,
	}

	if size < c.multipartThreshold {
		opts.DisableMultipart = true
	} else {
		opts.PartSize = uint64(c.partSize)
		opts.NumThreads = c.partConcurrency
		opts.Progress = newUploadProgress(key, size)
	}

	_, err := c.client.PutObject(ctx, c.bucket, key, reader, size, opts)
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	metrics.StorageUploadBytesTotal.Add(float64(size))
	return nil
}

// Download retrieves an object from the bucket, optionally restricted to an
// inclusive byte range. The caller must close the returned reader.
func (c *Client) Download(ctx context.Context, key string, rng *repository.ByteRange) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if rng != nil {
		if err := opts.SetRange(rng.Start, rng.End); err != nil {
			return nil, fmt.Errorf("failed to set range %d-%d: %w", rng.Start, rng.End, err)
		}
	}

	obj, err := c.client.GetObject(ctx, c.bucket, key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	// Verify the object exists by checking its stat.
	// GetObject returns a lazy reader that doesn't fail until read.
	_, err = obj.Stat()
	if err != nil {
		_ = obj.Close() // Best effort close on error path
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, repository.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return obj, nil
}

// Stat returns metadata for the object under key without fetching the body.
func (c *Client) Stat(ctx context.Context, key string) (repository.ObjectInfo, error) {
	info, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return repository.ObjectInfo{}, repository.ErrObjectNotFound
		}
		return repository.ObjectInfo{}, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return repository.ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// Exists checks if an object exists in the bucket.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// PresignedGetURL creates a time-limited URL for downloading an object.
// Uses presignedClient which may be configured with a public endpoint.
func (c *Client) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	reqParams := make(url.Values)
	presignedURL, err := c.presignedClient.PresignedGetObject(ctx, c.bucket, key, expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return presignedURL.String(), nil
}

// Ping verifies the MinIO connection is alive by checking bucket access.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to ping minio: %w", err)
	}
	return nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// uploadProgress implements the io.Reader contract minio uses for progress
// reporting: Read is invoked with buffers sized to the bytes just
// transferred. Fractional progress is logged as parts complete.
type uploadProgress struct {
	key         string
	total       int64
	transferred int64
	lastDecile  int
}

func newUploadProgress(key string, total int64) *uploadProgress {
	return &uploadProgress{key: key, total: total}
}

func (p *uploadProgress) Read(b []byte) (int, error) {
	n := len(b)
	p.transferred += int64(n)

	if p.total > 0 {
		decile := int(p.transferred * 10 / p.total)
		if decile > p.lastDecile {
			p.lastDecile = decile
			slog.Debug("multipart upload progress",
				slog.String("key", p.key),
				slog.Float64("fraction", float64(p.transferred)/float64(p.total)),
			)
		}
	}

	return n, nil
}
