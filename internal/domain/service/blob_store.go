package service

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned by Open and Delete when no blob has the given id.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore holds uploaded photo bytes, addressed by opaque ids.
type BlobStore interface {
	Store(ctx context.Context, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
