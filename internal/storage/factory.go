package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// NewS3 builds an S3 client, detecting the storage type from the endpoint when unset.
func NewS3(cfg *S3Config) (*S3Storage, error) {
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}
	return NewS3Storage(cfg)
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case endpoint == "", strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}

// Router dispatches s3:// locations to S3 and everything else to the local filesystem.
type Router struct {
	s3 ArtifactStore
}

// NewRouter creates a Router. s3 may be nil when no bucket is configured.
func NewRouter(s3 ArtifactStore) *Router {
	return &Router{s3: s3}
}

// Open implements ArtifactStore.
func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "s3://") {
		if r.s3 == nil {
			return nil, fmt.Errorf("s3 storage not configured for %s", location)
		}
		return r.s3.Open(ctx, location)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	return f, nil
}
