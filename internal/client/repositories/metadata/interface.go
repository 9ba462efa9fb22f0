// Package metadata implements the local key/value table backing the
// persisted session store. Every repository is scoped to a namespace so
// several features can share the table without clobbering each other.
package metadata

import (
	"context"
)

// Repository is a namespaced byte-valued key/value store.
//
// Get returns (nil, nil) for a missing key. Delete and Clear are
// idempotent. Clear removes only the keys of the repository's namespace.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
