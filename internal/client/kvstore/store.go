// Package kvstore provides the durable key-value store the outbox persists
// its snapshot into. Values are opaque byte blobs.
package kvstore

import "context"

// Store is a string-keyed blob store. Get returns (nil, nil) for a missing
// key; Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
