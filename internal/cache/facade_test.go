package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-api/internal/models"
)

// brokenBackend simula un Redis caído
type brokenBackend struct {
	mu   sync.Mutex
	sets int
}

var errDown = errors.New("connection refused")

func (b *brokenBackend) Get(context.Context, string) ([]byte, error) { return nil, errDown }

func (b *brokenBackend) Set(context.Context, string, []byte, time.Duration) error {
	b.mu.Lock()
	b.sets++
	b.mu.Unlock()
	return errDown
}

func (b *brokenBackend) Ping(context.Context) error { return errDown }

func (b *brokenBackend) Close() error { return nil }

// recordingBackend guarda el último TTL recibido
type recordingBackend struct {
	NoopBackend
	ttls map[string]time.Duration
}

func (r *recordingBackend) Set(_ context.Context, key string, _ []byte, ttl time.Duration) error {
	r.ttls[key] = ttl
	return nil
}

func TestFacade_PutUsesClassTTL(t *testing.T) {
	rec := &recordingBackend{ttls: map[string]time.Duration{}}
	f := NewFacade(rec, "products", DefaultTTLs(), zerolog.Nop())
	ctx := context.Background()

	keys := map[Key]time.Duration{
		f.ListKey(models.DefaultQuerySpec()): 2 * time.Minute,
		f.DetailKey(7):                       15 * time.Minute,
		f.StatsKey():                         5 * time.Minute,
		f.CategoriesKey():                    time.Hour,
		f.BrandsKey():                        time.Hour,
	}
	for key := range keys {
		f.Put(ctx, key, []byte("x"))
	}
	for key, want := range keys {
		assert.Equal(t, want, rec.ttls[key.String()], key.String())
	}
}

func TestFacade_FailsOpen(t *testing.T) {
	broken := &brokenBackend{}
	f := NewFacade(broken, "products", DefaultTTLs(), zerolog.Nop())
	ctx := context.Background()

	_, ok := f.Get(ctx, f.StatsKey())
	assert.False(t, ok)

	// Put no devuelve error ni entra en pánico
	f.Put(ctx, f.StatsKey(), []byte("x"))

	calls := 0
	payload, hit, err := f.Fetch(ctx, f.StatsKey(), func(context.Context) ([]byte, error) {
		calls++
		return []byte(`{"total_products":3}`), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, `{"total_products":3}`, string(payload))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, broken.sets)
}

func TestFacade_FetchReadThrough(t *testing.T) {
	f := NewFacade(NewMemoryBackend(0), "products", DefaultTTLs(), zerolog.Nop())
	ctx := context.Background()
	key := f.DetailKey(1)

	calls := 0
	fill := func(context.Context) ([]byte, error) {
		calls++
		return []byte(`{"id":1}`), nil
	}

	cold, hit, err := f.Fetch(ctx, key, fill)
	require.NoError(t, err)
	assert.False(t, hit)

	warm, hit, err := f.Fetch(ctx, key, fill)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, cold, warm)
	assert.Equal(t, 1, calls)
}

func TestFacade_FetchErrorIsNotCached(t *testing.T) {
	f := NewFacade(NewMemoryBackend(0), "products", DefaultTTLs(), zerolog.Nop())
	ctx := context.Background()
	key := f.DetailKey(404)

	_, _, err := f.Fetch(ctx, key, func(context.Context) ([]byte, error) {
		return nil, models.ErrNotFound
	})
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, ok := f.Get(ctx, key)
	assert.False(t, ok)
}

func TestFacade_StatsExpiryWithRedis(t *testing.T) {
	mr, backend := newTestRedis(t)
	f := NewFacade(backend, "products", DefaultTTLs(), zerolog.Nop())
	ctx := context.Background()

	version := 0
	fill := func(context.Context) ([]byte, error) {
		version++
		return []byte{byte('0' + version)}, nil
	}

	first, _, err := f.Fetch(ctx, f.StatsKey(), fill)
	require.NoError(t, err)

	mr.FastForward(time.Second)
	second, hit, err := f.Fetch(ctx, f.StatsKey(), fill)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)

	mr.FastForward(5 * time.Minute)
	third, hit, err := f.Fetch(ctx, f.StatsKey(), fill)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotEqual(t, first, third)
	assert.Equal(t, 2, version)
}

func TestFacade_RedisOutageFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	backend, err := NewRedisBackend("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	f := NewFacade(backend, "products", DefaultTTLs(), zerolog.Nop())
	mr.Close()

	payload, hit, err := f.Fetch(context.Background(), f.BrandsKey(), func(context.Context) ([]byte, error) {
		return []byte(`{"brands":[],"total":0}`), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, `{"brands":[],"total":0}`, string(payload))
	assert.Error(t, f.Ping(context.Background()))
}
