package cart

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by Store.Load when no snapshot exists for the key
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// Store is the key-value backend carts are written through to
type Store interface {
	// Load returns the raw snapshot stored under key, or ErrSnapshotNotFound
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the snapshot stored under key
	Save(ctx context.Context, key string, data []byte) error
}

// Deleter is implemented by stores that can drop a snapshot
type Deleter interface {
	Delete(ctx context.Context, key string) error
}
