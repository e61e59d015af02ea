//go:build integration
// +build integration

package cache

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addressvalidation/internal"
)

func newTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()

	_ = godotenv.Load("../../.env.test")
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, internal.RunMigrations(db, nil))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	require.NoError(t, s.Clear(context.Background()))
	return s
}

func TestPostgresStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestPostgres(t)

	require.NoError(t, s.Set(ctx, "k", []byte(`{"responseId":"r1"}`), time.Hour))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"responseId":"r1"}`, string(v))

	require.NoError(t, s.Set(ctx, "k", []byte(`{"responseId":"r2"}`), time.Hour))
	v, _, _ = s.Get(ctx, "k")
	assert.Equal(t, `{"responseId":"r2"}`, string(v))

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := newTestPostgres(t)

	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, s.Set(ctx, "long", []byte("v"), time.Hour))

	now = now.Add(2 * time.Minute)
	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ = s.Get(ctx, "long")
	assert.True(t, ok)
}
