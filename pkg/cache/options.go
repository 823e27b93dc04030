package cache

import (
	"log/slog"

	"github.com/c360/genericcache/metric"
)

// Option configures cache behavior using the functional options pattern.
type Option[V any] func(*cacheOptions[V])

// cacheOptions holds internal configuration for cache instances.
// Stats are ALWAYS collected - they are not optional.
type cacheOptions[V any] struct {
	// metricsReg is optional - if provided, cache stats are also exposed as Prometheus metrics
	metricsReg    metric.MetricsRegistrar
	metricsPrefix string

	logger *slog.Logger

	// subscribers registered for the lifetime of the cache
	subscribers []DeleteCallback[V]
}

// WithMetrics enables Prometheus metrics export for cache statistics.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics[V any](registry metric.MetricsRegistrar, prefix string) Option[V] {
	return func(opts *cacheOptions[V]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithLogger sets the logger for operational events (hit, miss, eviction,
// subscription changes and subscriber failures).
func WithLogger[V any](logger *slog.Logger) Option[V] {
	return func(opts *cacheOptions[V]) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithDeleteSubscriber registers a deletion callback for the lifetime of the
// cache. Use SubscribeDelete when the subscription must be removable.
func WithDeleteSubscriber[V any](callback DeleteCallback[V]) Option[V] {
	return func(opts *cacheOptions[V]) {
		if callback != nil {
			opts.subscribers = append(opts.subscribers, callback)
		}
	}
}

func applyOptions[V any](options ...Option[V]) *cacheOptions[V] {
	opts := &cacheOptions[V]{}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	if opts.logger == nil {
		opts.logger = slog.Default()
	}

	return opts
}
