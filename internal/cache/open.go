package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend names accepted by Open.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	MemorySize int
	MaxTTL     time.Duration
	Redis      RedisConfig
	Pool       *pgxpool.Pool
}

// Open builds the store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NopStore{}, nil
	case BackendMemory:
		return NewMemoryStore(opts.MemorySize, opts.MaxTTL), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.Redis)
	case BackendPostgres:
		if opts.Pool == nil {
			return nil, fmt.Errorf("postgres cache requires a connection pool")
		}
		return NewPostgresStore(opts.Pool), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
