package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/genericcache/metric"
)

// cacheMetrics holds Prometheus metrics for cache operations.
type cacheMetrics struct {
	hits               prometheus.Counter
	misses             prometheus.Counter
	sets               prometheus.Counter
	deletions          *prometheus.CounterVec // by reason
	subscriberFailures prometheus.Counter

	size          prometheus.Gauge
	subscriptions prometheus.Gauge
}

// newCacheMetrics creates and registers cache metrics with the provided registry.
func newCacheMetrics(registry metric.MetricsRegistrar, prefix string) (*cacheMetrics, error) {
	labels := prometheus.Labels{"component": prefix}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "genericcache",
			Subsystem:   "cache",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "genericcache",
			Subsystem:   "cache",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		})
	}

	m := &cacheMetrics{
		hits:   counter("hits_total", "Total number of cache hits"),
		misses: counter("misses_total", "Total number of cache misses"),
		sets:   counter("sets_total", "Total number of cache set operations"),
		deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "genericcache",
			Subsystem:   "cache",
			Name:        "deletions_total",
			ConstLabels: labels,
			Help:        "Total number of entries removed, by deletion reason",
		}, []string{"reason"}),
		subscriberFailures: counter("subscriber_failures_total", "Total number of failed deletion callbacks"),
		size:               gauge("size", "Current number of entries in cache"),
		subscriptions:      gauge("subscriptions", "Current number of deletion subscriptions"),
	}

	if err := registry.RegisterCounter(prefix, "cache_hits", m.hits); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "cache_misses", m.misses); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "cache_sets", m.sets); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(prefix, "cache_deletions", m.deletions); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "cache_subscriber_failures", m.subscriberFailures); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "cache_size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "cache_subscriptions", m.subscriptions); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *cacheMetrics) recordHit()  { m.hits.Inc() }
func (m *cacheMetrics) recordMiss() { m.misses.Inc() }
func (m *cacheMetrics) recordSet()  { m.sets.Inc() }

func (m *cacheMetrics) recordDeletion(reason DeletionReason, n int) {
	m.deletions.WithLabelValues(reason.String()).Add(float64(n))
}

func (m *cacheMetrics) recordSubscriberFailure() { m.subscriberFailures.Inc() }

func (m *cacheMetrics) updateSize(size int) { m.size.Set(float64(size)) }

func (m *cacheMetrics) updateSubscriptions(n int) { m.subscriptions.Set(float64(n)) }
