// Package attrcache implements the keyed attribute cache (spec §4.2,
// C2): a persistent key/value store for JSON-serializable values, with
// a negative-entry convention for "looked up and not found".
package attrcache

import (
	"context"
	"encoding/json"
	"fmt"
)

// notFoundPrefix namespaces negative-cache sentinel keys, matching
// spec §4.6 ("artist::metadata::<name>" style keys get a parallel
// "not_found::" entry).
const notFoundPrefix = "not_found::"

// Backend is the storage contract behind Cache; attrcache ships a
// sqlite-backed embedded implementation and a redis-backed networked
// one (see sqlite.go / redis.go), selected by configuration.
type Backend interface {
	GetRaw(ctx context.Context, key string) ([]byte, bool, error)
	SetRaw(ctx context.Context, key string, value []byte) error
	Close() error
}

// Cache is the generic, JSON-based attribute cache.
type Cache struct {
	backend Backend
}

// New wraps a Backend in the JSON (de)serializing Cache contract.
func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// Close releases the underlying backend.
func (c *Cache) Close() error { return c.backend.Close() }

// Get deserializes the value stored at key into dst, reporting whether
// it was present.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := c.backend.GetRaw(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("attrcache: decode %q: %w", key, err)
	}
	return true, nil
}

// Set serializes value and stores it under key.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("attrcache: encode %q: %w", key, err)
	}
	return c.backend.SetRaw(ctx, key, raw)
}

// SetNotFound writes the negative-entry sentinel for key (spec §4.2).
func (c *Cache) SetNotFound(ctx context.Context, key string) error {
	return c.backend.SetRaw(ctx, notFoundPrefix+key, []byte("true"))
}

// IsNotFound reports whether the negative-entry sentinel is set for key.
func (c *Cache) IsNotFound(ctx context.Context, key string) (bool, error) {
	_, ok, err := c.backend.GetRaw(ctx, notFoundPrefix+key)
	return ok, err
}
