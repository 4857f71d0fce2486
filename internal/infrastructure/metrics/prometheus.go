// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mediavault"

var (
	// IngestTotal tracks ingestion pipeline runs.
	// Labels:
	//   - status: success, validation_error, probe_error, thumbnail_error,
	//     upload_error, persist_error
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_total",
			Help:      "Total number of ingestion pipeline runs",
		},
		[]string{"status"},
	)

	// IngestDurationSeconds tracks end-to-end ingestion latency.
	IngestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "End-to-end ingestion pipeline duration",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// StorageUploadBytesTotal tracks bytes written to the object store.
	StorageUploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_upload_bytes_total",
			Help:      "Total bytes uploaded to object storage",
		},
	)

	// StreamRequestsTotal tracks streaming requests by outcome.
	// Labels:
	//   - status: full, partial, redirect, range_error, not_found, error
	StreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_requests_total",
			Help:      "Total number of stream requests",
		},
		[]string{"status"},
	)

	// HTTPRequestDurationSeconds tracks request latency by route and status.
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	// CacheOperationsTotal tracks cache operations (get, set, delete).
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	//   - cache_type: redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// ReconcileChecksTotal tracks reconciliation sweep outcomes.
	// Labels:
	//   - result: consistent, missing_video, missing_thumbnails, error
	ReconcileChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_checks_total",
			Help:      "Total number of post-ingest reconciliation checks",
		},
		[]string{"result"},
	)
)

// Ingest status constants.
const (
	IngestStatusSuccess         = "success"
	IngestStatusValidationError = "validation_error"
	IngestStatusProbeError      = "probe_error"
	IngestStatusThumbnailError  = "thumbnail_error"
	IngestStatusUploadError     = "upload_error"
	IngestStatusPersistError    = "persist_error"
)

// Stream status constants.
const (
	StreamStatusFull       = "full"
	StreamStatusPartial    = "partial"
	StreamStatusRedirect   = "redirect"
	StreamStatusRangeError = "range_error"
	StreamStatusNotFound   = "not_found"
	StreamStatusError      = "error"
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Cache type constants.
const (
	CacheTypeRedis = "redis"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)

// Reconciliation result constants.
const (
	ReconcileConsistent        = "consistent"
	ReconcileMissingVideo      = "missing_video"
	ReconcileMissingThumbnails = "missing_thumbnails"
	ReconcileError             = "error"
)
