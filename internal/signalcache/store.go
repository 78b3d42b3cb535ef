package signalcache

import (
	"context"
	"errors"
)

// Store keys for the persisted snapshot and its bookkeeping
const (
	KeySnapshot = "signals:snapshot"
	KeyMetadata = "signals:metadata"
)

// ErrNotFound is returned by Store.Get for a missing key
var ErrNotFound = errors.New("key not found")

// Store is the durable key-value surface behind the cache. The last
// successful result set and metadata are written after each refresh and read
// back at startup, so a restart never opens with an empty cache.
type Store interface {
	// Get returns the value for key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes the value for key
	Put(ctx context.Context, key string, value []byte) error
}
