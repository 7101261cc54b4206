package storage

import (
	"context"
	"io"
)

// ArtifactStore opens read-only blobs such as the classifier model.
type ArtifactStore interface {
	// Open returns a reader for the object at location. Callers close it.
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}
