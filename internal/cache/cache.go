// Package cache stores raw validation responses keyed by request content.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// KeyPrefix starts every cache key.
const KeyPrefix = "gav_"

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("cache: unknown backend")

// Store is a key/value store with per-entry expiry.
type Store interface {
	// Get returns the cached value. A missing or expired entry yields ok=false
	// and a nil error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the store.
	Clear(ctx context.Context) error

	// Close releases connections held by the store.
	Close() error
}

// Key derives a cache key from the canonical request body and a caller
// namespace (normally the API key), so callers sharing a backend never read
// each other's entries.
func Key(body []byte, namespace string) string {
	h := sha256.New()
	h.Write(body)
	h.Write([]byte{0})
	h.Write([]byte(namespace))
	return KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// NopStore never stores anything.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Delete(context.Context, string) error                     { return nil }
func (NopStore) Clear(context.Context) error                              { return nil }
func (NopStore) Close() error                                             { return nil }
