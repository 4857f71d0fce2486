package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/hszk-dev/mediavault/internal/domain/repository"
)

// mockObjectReader implements objectReader interface for testing.
type mockObjectReader struct {
	statFunc func() (minio.ObjectInfo, error)
	data     []byte
	offset   int
	closed   bool
}

func (m *mockObjectReader) Read(p []byte) (n int, err error) {
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}
	n = copy(p, m.data[m.offset:])
	m.offset += n
	return n, nil
}

func (m *mockObjectReader) Close() error {
	m.closed = true
	return nil
}

func (m *mockObjectReader) Stat() (minio.ObjectInfo, error) {
	if m.statFunc != nil {
		return m.statFunc()
	}
	return minio.ObjectInfo{Size: int64(len(m.data))}, nil
}

// mockMinioClient implements minioClient interface for testing.
type mockMinioClient struct {
	bucketExistsFunc       func(ctx context.Context, bucketName string) (bool, error)
	makeBucketFunc         func(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	setBucketPolicyFunc    func(ctx context.Context, bucketName, policy string) error
	putObjectFunc          func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	getObjectFunc          func(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error)
	statObjectFunc         func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	presignedGetObjectFunc func(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

func (m *mockMinioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if m.bucketExistsFunc != nil {
		return m.bucketExistsFunc(ctx, bucketName)
	}
	return true, nil
}

func (m *mockMinioClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	if m.makeBucketFunc != nil {
		return m.makeBucketFunc(ctx, bucketName, opts)
	}
	return nil
}

func (m *mockMinioClient) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	if m.setBucketPolicyFunc != nil {
		return m.setBucketPolicyFunc(ctx, bucketName, policy)
	}
	return nil
}

func (m *mockMinioClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, bucketName, objectName, reader, objectSize, opts)
	}
	return minio.UploadInfo{}, nil
}

func (m *mockMinioClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
	if m.getObjectFunc != nil {
		return m.getObjectFunc(ctx, bucketName, objectName, opts)
	}
	return &mockObjectReader{}, nil
}

func (m *mockMinioClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if m.statObjectFunc != nil {
		return m.statObjectFunc(ctx, bucketName, objectName, opts)
	}
	return minio.ObjectInfo{}, nil
}

func (m *mockMinioClient) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	if m.presignedGetObjectFunc != nil {
		return m.presignedGetObjectFunc(ctx, bucketName, objectName, expiry, reqParams)
	}
	return url.Parse("http://localhost:9000/" + bucketName + "/" + objectName)
}

func testClientConfig() ClientConfig {
	return ClientConfig{
		Bucket:             "test-bucket",
		MultipartThreshold: 100 << 20,
		PartSize:           100 << 20,
		PartConcurrency:    4,
	}
}

func newTestClient(t *testing.T, mock *mockMinioClient, cfg ClientConfig) *Client {
	t.Helper()
	client, err := newClientWithMinioClient(context.Background(), mock, mock, cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewClient_BucketBootstrap(t *testing.T) {
	madeBucket := false
	policySet := false

	mock := &mockMinioClient{
		bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
			return false, nil
		},
		makeBucketFunc: func(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
			if bucketName != "test-bucket" {
				t.Errorf("bucket: got %s", bucketName)
			}
			madeBucket = true
			return nil
		},
		setBucketPolicyFunc: func(ctx context.Context, bucketName, policy string) error {
			policySet = true
			if !strings.Contains(policy, "s3:GetObject") {
				t.Errorf("policy should allow GetObject, got %s", policy)
			}
			return nil
		},
	}

	cfg := testClientConfig()
	cfg.PublicRead = true
	newTestClient(t, mock, cfg)

	if !madeBucket {
		t.Error("expected bucket to be created")
	}
	if !policySet {
		t.Error("expected public-read policy to be applied")
	}
}

func TestNewClient_ExistingBucketUntouched(t *testing.T) {
	mock := &mockMinioClient{
		makeBucketFunc: func(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
			t.Error("MakeBucket should not be called for an existing bucket")
			return nil
		},
	}

	newTestClient(t, mock, testClientConfig())
}

func TestClient_Upload_SingleShotBelowThreshold(t *testing.T) {
	ctx := context.Background()

	var gotOpts minio.PutObjectOptions
	var gotSize int64
	mock := &mockMinioClient{
		putObjectFunc: func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
			gotOpts = opts
			gotSize = objectSize
			return minio.UploadInfo{}, nil
		},
	}

	client := newTestClient(t, mock, testClientConfig())

	data := []byte("small object")
	err := client.Upload(ctx, "videos/v1.mp4", bytes.NewReader(data), int64(len(data)), "video/mp4")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !gotOpts.DisableMultipart {
		t.Error("small upload should disable multipart")
	}
	if gotOpts.ContentType != "video/mp4" {
		t.Errorf("content type: got %q", gotOpts.ContentType)
	}
	if gotSize != int64(len(data)) {
		t.Errorf("size: got %d", gotSize)
	}
}

func TestClient_Upload_MultipartAtThreshold(t *testing.T) {
	ctx := context.Background()

	var gotOpts minio.PutObjectOptions
	mock := &mockMinioClient{
		putObjectFunc: func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
			gotOpts = opts
			return minio.UploadInfo{}, nil
		},
	}

	cfg := testClientConfig()
	cfg.MultipartThreshold = 1024
	cfg.PartSize = 1024
	cfg.PartConcurrency = 4
	client := newTestClient(t, mock, cfg)

	// Exactly at the threshold goes multipart.
	err := client.Upload(ctx, "videos/v1.mp4", strings.NewReader(strings.Repeat("x", 1024)), 1024, "video/mp4")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if gotOpts.DisableMultipart {
		t.Error("threshold-sized upload should use multipart")
	}
	if gotOpts.PartSize != 1024 {
		t.Errorf("part size: got %d, expected 1024", gotOpts.PartSize)
	}
	if gotOpts.NumThreads != 4 {
		t.Errorf("part concurrency: got %d, expected 4", gotOpts.NumThreads)
	}
	if gotOpts.Progress == nil {
		t.Error("multipart upload should attach progress reporting")
	}
}

func TestClient_Upload_Error(t *testing.T) {
	ctx := context.Background()

	mock := &mockMinioClient{
		putObjectFunc: func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
			return minio.UploadInfo{}, errors.New("connection reset")
		},
	}

	client := newTestClient(t, mock, testClientConfig())

	err := client.Upload(ctx, "videos/v1.mp4", strings.NewReader("data"), 4, "video/mp4")
	if err == nil {
		t.Fatal("expected upload error")
	}
}

func TestClient_Download_FullObject(t *testing.T) {
	ctx := context.Background()

	var gotOpts minio.GetObjectOptions
	mock := &mockMinioClient{
		getObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
			gotOpts = opts
			return &mockObjectReader{data: []byte("full video bytes")}, nil
		},
	}

	client := newTestClient(t, mock, testClientConfig())

	reader, err := client.Download(ctx, "videos/v1.mp4", nil)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer reader.Close()

	if gotOpts.Header().Get("Range") != "" {
		t.Errorf("unexpected range header: %q", gotOpts.Header().Get("Range"))
	}

	data, _ := io.ReadAll(reader)
	if string(data) != "full video bytes" {
		t.Errorf("data: got %q", data)
	}
}

func TestClient_Download_ByteRange(t *testing.T) {
	ctx := context.Background()

	var gotOpts minio.GetObjectOptions
	mock := &mockMinioClient{
		getObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
			gotOpts = opts
			return &mockObjectReader{data: []byte("windowed")}, nil
		},
	}

	client := newTestClient(t, mock, testClientConfig())

	reader, err := client.Download(ctx, "videos/v1.mp4", &repository.ByteRange{Start: 100, End: 199})
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer reader.Close()

	if got := gotOpts.Header().Get("Range"); got != "bytes=100-199" {
		t.Errorf("range header: got %q, expected bytes=100-199", got)
	}
}

func TestClient_Download_NotFound(t *testing.T) {
	ctx := context.Background()

	mock := &mockMinioClient{
		getObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
			return &mockObjectReader{
				statFunc: func() (minio.ObjectInfo, error) {
					return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
				},
			}, nil
		},
	}

	client := newTestClient(t, mock, testClientConfig())

	_, err := client.Download(ctx, "videos/missing.mp4", nil)
	if !errors.Is(err, repository.ErrObjectNotFound) {
		t.Errorf("got error %v, expected ErrObjectNotFound", err)
	}
}

func TestClient_Stat(t *testing.T) {
	ctx := context.Background()

	now := time.Now()
	mock := &mockMinioClient{
		statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
			return minio.ObjectInfo{
				Key:          objectName,
				Size:         2048,
				ContentType:  "video/mp4",
				LastModified: now,
			}, nil
		},
	}

	client := newTestClient(t, mock, testClientConfig())

	info, err := client.Stat(ctx, "videos/v1.mp4")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size != 2048 {
		t.Errorf("Size: got %d", info.Size)
	}
	if info.ContentType != "video/mp4" {
		t.Errorf("ContentType: got %q", info.ContentType)
	}
}

func TestClient_Stat_NotFound(t *testing.T) {
	ctx := context.Background()

	mock := &mockMinioClient{
		statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
			return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
		},
	}

	client := newTestClient(t, mock, testClientConfig())

	_, err := client.Stat(ctx, "videos/missing.mp4")
	if !errors.Is(err, repository.ErrObjectNotFound) {
		t.Errorf("got error %v, expected ErrObjectNotFound", err)
	}
}

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		statErr  error
		expected bool
		wantErr  bool
	}{
		{"present", nil, true, false},
		{"absent", minio.ErrorResponse{Code: "NoSuchKey"}, false, false},
		{"unreachable", errors.New("connection refused"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockMinioClient{
				statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
					return minio.ObjectInfo{}, tt.statErr
				},
			}

			client := newTestClient(t, mock, testClientConfig())

			ok, err := client.Exists(ctx, "videos/v1.mp4")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Exists failed: %v", err)
			}
			if ok != tt.expected {
				t.Errorf("got %v, expected %v", ok, tt.expected)
			}
		})
	}
}

func TestClient_PresignedGetURL(t *testing.T) {
	ctx := context.Background()

	mock := &mockMinioClient{
		presignedGetObjectFunc: func(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
			if expiry != 15*time.Minute {
				t.Errorf("expiry: got %v", expiry)
			}
			return url.Parse("http://public.example.com/" + bucketName + "/" + objectName + "?sig=abc")
		},
	}

	client := newTestClient(t, mock, testClientConfig())

	u, err := client.PresignedGetURL(ctx, "videos/v1.mp4", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignedGetURL failed: %v", err)
	}
	if !strings.Contains(u, "videos/v1.mp4") {
		t.Errorf("url: got %q", u)
	}
}

func TestUploadProgress_DecileTracking(t *testing.T) {
	p := newUploadProgress("videos/v1.mp4", 100)

	// Each Read call reports the bytes just transferred.
	for range 10 {
		n, err := p.Read(make([]byte, 10))
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if n != 10 {
			t.Errorf("n: got %d", n)
		}
	}

	if p.transferred != 100 {
		t.Errorf("transferred: got %d, expected 100", p.transferred)
	}
	if p.lastDecile != 10 {
		t.Errorf("lastDecile: got %d, expected 10", p.lastDecile)
	}
}
