package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/addressvalidation/internal/crypto"
)

// EncryptedStore encrypts values before they reach the wrapped store, so
// addresses are not readable in a shared Redis or Postgres.
type EncryptedStore struct {
	Store
	enc crypto.Encryptor
}

// NewEncryptedStore wraps s.
func NewEncryptedStore(s Store, enc crypto.Encryptor) *EncryptedStore {
	return &EncryptedStore{Store: s, enc: enc}
}

// Get decrypts the stored value. Values that fail to decrypt, for example
// after a key rotation, are reported as errors and treated as misses by
// callers.
func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := s.Store.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	plain, err := s.enc.Decrypt(raw)
	if err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	return plain, true, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	sealed, err := s.enc.Encrypt(value)
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, key, sealed, ttl)
}

// Ping forwards to the wrapped store when it supports health checks.
func (s *EncryptedStore) Ping(ctx context.Context) error {
	if p, ok := s.Store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
