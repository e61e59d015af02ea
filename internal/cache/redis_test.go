package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr(), Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestRedisStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, "")

	require.NoError(t, s.Set(ctx, "gav_abc", []byte(`{"responseId":"r1"}`), time.Hour))
	assert.True(t, mr.Exists("addressvalidation:gav_abc"))

	v, ok, err := s.Get(ctx, "gav_abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"responseId":"r1"}`, string(v))

	require.NoError(t, s.Delete(ctx, "gav_abc"))
	_, ok, err = s.Get(ctx, "gav_abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, "t:")

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("t:k"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ClearOnlyOwnPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, "av:")

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, mr.Set("other:c", "3"))

	require.NoError(t, s.Clear(ctx))

	assert.False(t, mr.Exists("av:a"))
	assert.False(t, mr.Exists("av:b"))
	assert.True(t, mr.Exists("other:c"))
}

func TestNewRedisStore_Errors(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{})
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisStore(context.Background(), RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}

func TestEncryptedStore_Redis(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, "enc:")
	es := NewEncryptedStore(s, newEncryptor(t))

	require.NoError(t, es.Set(ctx, "k", []byte(`{"responseId":"r"}`), time.Minute))
	raw, err := mr.Get("enc:k")
	require.NoError(t, err)
	assert.NotContains(t, raw, "responseId")

	got, ok, err := es.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"responseId":"r"}`, string(got))
	assert.NoError(t, es.Ping(ctx))
}
