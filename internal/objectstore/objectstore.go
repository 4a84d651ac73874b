// Package objectstore abstracts the blob storage holding uploaded CNAB files.
package objectstore

import (
	"context"
	"io"
)

//go:generate mockgen -source=objectstore.go -destination=objectstore_mock.go -package=objectstore
type Storage interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}
