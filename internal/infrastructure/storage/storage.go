package storage

import (
	"context"
	"io"
)

// DocumentStorage stores uploaded case documents and generated PDFs under
// opaque keys.
type DocumentStorage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
