package repository

import "errors"

var (
	// ErrAssetNotFound is returned when no asset exists for a video ID.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrDuplicateAsset is returned when creating an asset whose video ID
	// is already persisted.
	ErrDuplicateAsset = errors.New("asset already exists")

	// ErrObjectNotFound is returned when a storage key has no object.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket does not exist
	// and could not be created.
	ErrBucketNotFound = errors.New("bucket not found")
)
