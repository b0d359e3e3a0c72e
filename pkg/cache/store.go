package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache or has expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a concurrency-safe key/value cache with per-entry TTL.
type Store interface {
	// Get returns the stored bytes, or ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// GetJSON loads key from store into dest. It reports false without error on
// a miss. An entry that cannot be decoded is deleted and reported as
// ErrInvalidEntry.
func GetJSON(ctx context.Context, store Store, key string, dest any) (bool, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		_ = store.Delete(ctx, key)
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, key, err)
	}
	return true, nil
}

// SetJSON stores value under key as JSON for ttl.
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return store.Set(ctx, key, data, ttl)
}
