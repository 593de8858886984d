package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/metric"
)

func TestLRU_Eviction(t *testing.T) {
	var evicted []string
	c, err := NewLRU[int](2, WithEvictionCallback(func(key string, _ int) {
		evicted = append(evicted, key)
	}))
	require.NoError(t, err)

	created, err := c.Set("a", 1)
	require.NoError(t, err)
	assert.True(t, created)
	_, err = c.Set("b", 2)
	require.NoError(t, err)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, err = c.Set("c", 3)
	require.NoError(t, err)

	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, []string{"c", "a"}, c.Keys())
	assert.Equal(t, int64(1), c.Stats().Evictions())
	assert.Equal(t, int64(2), c.Stats().CurrentSize())

	created, err = c.Set("a", 10)
	require.NoError(t, err)
	assert.False(t, created)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewLRU[string](4, WithTTL[string](time.Minute), withClock[string](func() time.Time { return now }))
	require.NoError(t, err)

	_, err = c.Set("k", "v")
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Size())
	assert.Equal(t, int64(1), c.Stats().Expirations())
	assert.InDelta(t, 0.5, c.Stats().HitRatio(), 1e-9)
}

func TestLRU_DeleteAndClear(t *testing.T) {
	var removed int
	c, err := NewLRU[int](4, WithEvictionCallback(func(string, int) { removed++ }))
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		_, err := c.Set(k, 0)
		require.NoError(t, err)
	}

	ok, err := c.Delete("a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Delete("a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Clear())
	assert.Zero(t, c.Size())
	assert.Equal(t, 3, removed)
}

func TestLRU_InvalidInput(t *testing.T) {
	_, err := NewLRU[int](0)
	assert.True(t, errors.IsInvalid(err))

	c, err := NewLRU[int](1)
	require.NoError(t, err)
	_, err = c.Set("", 1)
	assert.True(t, errors.IsInvalid(err))
	_, err = c.Delete("")
	assert.True(t, errors.IsInvalid(err))
}

func TestLRU_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	c, err := NewLRU[int](1, WithMetrics[int](registry, "retrieval"))
	require.NoError(t, err)

	_, _ = c.Set("a", 1)
	_, _ = c.Set("b", 2)
	c.Get("b")
	c.Get("a")

	impl := c.(*lruCache[int])
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.metrics.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.metrics.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.metrics.evictions.WithLabelValues("size")))
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.metrics.size))

	_, err = NewLRU[int](1, WithMetrics[int](registry, "retrieval"))
	assert.Error(t, err, "metrics of one prefix register once")
}
