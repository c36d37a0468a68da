package cache

import (
	"context"
	"errors"
)

// Provider is an interface for getting and setting cached objects.
//
// Implementations must be safe for concurrent use: concurrent Gets may
// run freely, and Set/Delete for the same key must be serialized so
// that the stored value always reflects the last writer. Values are
// byte-transparent: Get returns exactly the bytes previously passed to
// Set for the same key.
type Provider interface {
	Get(ctx context.Context, key string) (data []byte, err error)
	Set(ctx context.Context, key string, data []byte) (err error)
	Delete(ctx context.Context, key string) (err error)
	Shutdown()
}

// GetEntry looks up and decodes the cached entry for a key
func GetEntry(ctx context.Context, provider Provider, key string) (*Entry, error) {
	data, err := provider.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return DecodeEntry(data)
}

// SetEntry encodes and stores an entry under a key, replacing any
// existing entry for that key
func SetEntry(ctx context.Context, provider Provider, key string, entry *Entry) error {
	data, err := entry.Encode()
	if err != nil {
		return err
	}

	return provider.Set(ctx, key, data)
}

// Errors
var (
	ErrNotFound = errors.New("not found in cache")
)
