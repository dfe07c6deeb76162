package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *memStore) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

type row struct {
	Department string `json:"department"`
	Hired      uint64 `json:"hired"`
}

func TestKey(t *testing.T) {
	assert.Equal(t, "hiring:agg:quarterly:2021", Key("quarterly", 2021))
}

func TestFetchMissThenHit(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, logger.Discard())
	ctx := context.Background()
	calls := 0
	compute := func(context.Context) ([]row, error) {
		calls++
		return []row{{Department: "Sales", Hired: 3}}, nil
	}

	v, hit, err := Fetch(ctx, c, Key("above_mean", 2021), compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []row{{Department: "Sales", Hired: 3}}, v)
	assert.Equal(t, time.Minute, store.ttls[Key("above_mean", 2021)+"@0"])

	v, hit, err = Fetch(ctx, c, Key("above_mean", 2021), compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Sales", v[0].Department)
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestFetchComputeErrorIsNotCached(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, logger.Discard())
	boom := errors.New("db down")

	_, _, err := Fetch(context.Background(), c, "k", func(context.Context) ([]row, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.Empty(t, store.data)
}

func TestFetchDegradesWhenStoreFails(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	c := New(store, time.Minute, logger.Discard())

	v, hit, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
}

func TestNilCacheComputes(t *testing.T) {
	var c *Cache
	v, hit, err := Fetch(context.Background(), c, "k", func(context.Context) (string, error) { return "x", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "x", v)
	assert.NoError(t, c.Invalidate(context.Background()))
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, logger.Discard())
	ctx := context.Background()
	store.data["other:key"] = []byte("1")

	_, _, err := Fetch(ctx, c, Key("quarterly", 2021), func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	require.Contains(t, store.data, Key("quarterly", 2021)+"@0")

	require.NoError(t, c.Invalidate(ctx))
	assert.NotContains(t, store.data, Key("quarterly", 2021)+"@0")
	assert.Contains(t, store.data, "other:key")
	assert.Equal(t, "1", string(store.data[genKey]))

	v, hit, err := Fetch(ctx, c, Key("quarterly", 2021), func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, v)
}

func TestInvalidateDuringComputeDropsStaleResult(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, logger.Discard())
	ctx := context.Background()
	key := Key("above_mean", 2021)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan []int)
	go func() {
		v, _, err := Fetch(ctx, c, key, func(context.Context) ([]int, error) {
			close(started)
			<-release
			return []int{42}, nil
		})
		assert.NoError(t, err)
		done <- v
	}()

	<-started
	// The write commits and invalidates while the read is still computing
	// from the data it saw before.
	require.NoError(t, c.Invalidate(ctx))
	close(release)
	assert.Equal(t, []int{42}, <-done)

	v, hit, err := Fetch(ctx, c, key, func(context.Context) ([]int, error) { return []int{}, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, v)
}

func TestFetchIgnoresLeaderCancellation(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, _, err := Fetch(ctx, c, "k", func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return 9, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestFetchGenerationErrorComputesWithoutCaching(t *testing.T) {
	store := newMemStore()
	store.data[genKey] = []byte("not-a-number")
	c := New(store, time.Minute, logger.Discard())

	v, hit, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 5, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 5, v)
	assert.Len(t, store.data, 1)
}
