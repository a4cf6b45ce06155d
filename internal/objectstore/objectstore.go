package objectstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the named object does not exist.
var ErrNotFound = errors.New("object not found")

// Store reads and writes whole objects addressed by bucket and key. Photos
// come in through it and finished reports go back out through it.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key, contentType string, data []byte) error
}
