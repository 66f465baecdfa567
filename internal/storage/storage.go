// Package storage resolves diarization inputs to local files and publishes
// exported tracks. It defines the Storage port and implementations for local
// disk and S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Storage defines how recordings are fetched and tracks are published.
type Storage interface {
	// Fetch returns a local path for source. Local paths are returned as is;
	// s3:// URIs are downloaded into the temp directory, keeping the object's
	// base name. Returns ErrS3NotConfigured if S3 is not available.
	Fetch(ctx context.Context, source string) (path string, err error)

	// CleanupTemp removes the specified temporary files or directories.
	// It continues cleanup even if some paths fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// UploadToS3 uploads data to S3 and returns the public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadToS3(ctx context.Context, key string, data io.Reader) (url string, err error)
}

const s3Scheme = "s3://"

// ErrInvalidS3URI is returned for s3:// URIs without a bucket or object key.
var ErrInvalidS3URI = errors.New("invalid S3 URI")

// IsS3URI reports whether source names an S3 object.
func IsS3URI(source string) bool {
	return strings.HasPrefix(source, s3Scheme)
}

// ParseS3URI splits s3://bucket/key into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URI, uri)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URI, uri)
	}
	return bucket, key, nil
}
