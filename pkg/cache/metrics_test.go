package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/genericcache/errors"
	"github.com/c360/genericcache/metric"
)

func TestCache_WithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	c := newTestCache[string](t, 2, WithMetrics[string](registry, "orders"))
	require.NotNil(t, c.metrics)

	id := c.SubscribeDelete(func(string, DeletionReason, string) {})
	c.SubscribeDelete(func(string, DeletionReason, string) { panic("bad subscriber") })

	c.Set("a", "1")
	c.Set("b", "2")
	c.TryGet("a")
	c.TryGet("missing")
	c.Set("c", "3") // evicts b
	c.Delete("a")
	c.Purge() // removes c

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.misses))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.metrics.sets))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.deletions.WithLabelValues("capacity_reached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.deletions.WithLabelValues("manual_delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.deletions.WithLabelValues("purge")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.metrics.subscriberFailures))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.metrics.size))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.metrics.subscriptions))

	c.UnsubscribeDelete(id)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.subscriptions))
}

func TestCache_WithMetricsIgnoredWithoutPrefix(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	c := newTestCache[int](t, 1, WithMetrics[int](registry, ""))
	assert.Nil(t, c.metrics)

	c = newTestCache[int](t, 1, WithMetrics[int](nil, "orders"))
	assert.Nil(t, c.metrics)

	assert.Equal(t, 0, registry.Registered())
}

func TestCache_DuplicateMetricsPrefix(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	newTestCache[int](t, 1, WithMetrics[int](registry, "orders"))

	c, err := New[int](Config{MaxSize: 1}, WithMetrics[int](registry, "orders"))
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "Cache.New: metrics registration failed")
}
