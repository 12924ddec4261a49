package store

import "context"

// Storage is the persistence capability the session store depends on: one
// named record of bytes. Get returns (nil, nil) when the key has never
// been written.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
