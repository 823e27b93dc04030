package notify

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/genericcache/errors"
	"github.com/c360/genericcache/metric"
	"github.com/c360/genericcache/pkg/cache"
)

// Publisher sends one message to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Config controls a Forwarder.
type Config struct {
	Subject   string  // prefix; events go to <Subject>.<reason>
	Workers   int     // publishing goroutines
	QueueSize int     // events buffered before dropping
	Backoff   Backoff // retry policy for transient publish failures
}

// DefaultConfig returns a default forwarder configuration.
func DefaultConfig() Config {
	return Config{
		Subject:   "genericcache.deletions",
		Workers:   2,
		QueueSize: 1024,
		Backoff:   DefaultBackoff(),
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Subject == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "subject is required")
	}
	if c.Workers < 0 || c.QueueSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "workers and queue_size cannot be negative")
	}
	return c.Backoff.Validate()
}

// Option configures a Forwarder.
type Option[V any] func(*Forwarder[V])

// WithLogger sets the logger for delivery failures and lifecycle events.
func WithLogger[V any](logger *slog.Logger) Option[V] {
	return func(f *Forwarder[V]) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics exports forwarding counters under the given component prefix.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics[V any](registry metric.MetricsRegistrar, prefix string) Option[V] {
	return func(f *Forwarder[V]) {
		if registry != nil && prefix != "" {
			f.metricsReg = registry
			f.metricsPrefix = prefix
		}
	}
}

// Forwarder publishes cache deletions as Events.
type Forwarder[V any] struct {
	publisher Publisher
	config    Config
	logger    *slog.Logger
	now       func() time.Time

	dispatcher *dispatcher[Event[V]]

	metricsReg    metric.MetricsRegistrar
	metricsPrefix string
	metrics       *forwarderMetrics

	published   int64
	encodeFails int64
}

// ForwarderStats reports delivery counters.
type ForwarderStats struct {
	DispatcherStats
	Published      int64 `json:"published"`
	EncodeFailures int64 `json:"encode_failures"`
}

// NewForwarder creates a forwarder publishing through publisher.
func NewForwarder[V any](publisher Publisher, cfg Config, opts ...Option[V]) (*Forwarder[V], error) {
	if publisher == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "Forwarder", "New", "publisher is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Forwarder", "New", "config validation")
	}

	f := &Forwarder[V]{
		publisher: publisher,
		config:    cfg,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.logger = f.logger.With("component", "notify", "subject", cfg.Subject)

	if f.metricsReg != nil {
		m, err := newForwarderMetrics(f.metricsReg, f.metricsPrefix)
		if err != nil {
			return nil, errors.Wrap(err, "Forwarder", "New", "metrics registration")
		}
		f.metrics = m
	}

	f.dispatcher = newDispatcher(cfg.Workers, cfg.QueueSize, f.publish)
	return f, nil
}

// Start launches the publishing workers. They exit when ctx is done or Stop
// is called.
func (f *Forwarder[V]) Start(ctx context.Context) error {
	if err := f.dispatcher.start(ctx); err != nil {
		return errors.WrapInvalid(err, "Forwarder", "Start", "start workers")
	}
	f.logger.Info("Deletion forwarder started",
		"workers", f.dispatcher.workers, "queue_size", f.dispatcher.queueSize)
	return nil
}

// Stop stops accepting events and waits up to timeout for queued events to
// be published.
func (f *Forwarder[V]) Stop(timeout time.Duration) error {
	if err := f.dispatcher.stop(timeout); err != nil {
		return errors.WrapFatal(err, "Forwarder", "Stop", "drain queue")
	}
	stats := f.Stats()
	f.logger.Info("Deletion forwarder stopped",
		"published", stats.Published, "failed", stats.Failed, "dropped", stats.Dropped)
	return nil
}

// Attach subscribes the forwarder to c and returns the subscription id.
func (f *Forwarder[V]) Attach(c *cache.Cache[V]) string {
	return c.SubscribeDelete(func(key string, reason cache.DeletionReason, value V) {
		f.Handle(c.Name(), key, reason, value)
	})
}

// Handle queues one deletion for publishing. It never blocks; events that do
// not fit in the queue, or arrive before Start or after Stop, are dropped.
func (f *Forwarder[V]) Handle(cacheName, key string, reason cache.DeletionReason, value V) {
	event := Event[V]{
		Cache:     cacheName,
		Key:       key,
		Reason:    reason,
		Value:     value,
		Timestamp: f.now().UTC(),
	}

	if err := f.dispatcher.submit(event); err != nil {
		if f.metrics != nil {
			f.metrics.dropped.Inc()
		}
		f.logger.Debug("Deletion event dropped", "key", key, "reason", reason.String(), "error", err)
		return
	}
	if f.metrics != nil {
		f.metrics.queueDepth.Set(float64(len(f.dispatcher.queue)))
	}
}

// Stats returns delivery counters.
func (f *Forwarder[V]) Stats() ForwarderStats {
	return ForwarderStats{
		DispatcherStats: f.dispatcher.stats(),
		Published:       atomic.LoadInt64(&f.published),
		EncodeFailures:  atomic.LoadInt64(&f.encodeFails),
	}
}

// Subject returns the subject an event is published to.
func (f *Forwarder[V]) Subject(reason cache.DeletionReason) string {
	return f.config.Subject + "." + reason.String()
}

func (f *Forwarder[V]) publish(ctx context.Context, event Event[V]) error {
	start := time.Now()
	if f.metrics != nil {
		defer func() { f.metrics.queueDepth.Set(float64(len(f.dispatcher.queue))) }()
	}

	data, err := event.Marshal()
	if err != nil {
		atomic.AddInt64(&f.encodeFails, 1)
		f.observe("encode_error", start)
		f.logger.Warn("Failed to encode deletion event", "key", event.Key, "error", err)
		return err
	}

	subject := f.Subject(event.Reason)
	err = retry(ctx, f.config.Backoff, func() error {
		return f.publisher.Publish(subject, data)
	})
	if err != nil {
		f.observe("error", start)
		f.logger.Warn("Failed to publish deletion event",
			"key", event.Key, "publish_subject", subject, "error", err)
		return errors.Wrap(err, "Forwarder", "publish", "publish to "+subject)
	}

	atomic.AddInt64(&f.published, 1)
	f.observe("success", start)
	return nil
}

func (f *Forwarder[V]) observe(status string, start time.Time) {
	if f.metrics == nil {
		return
	}
	f.metrics.published.WithLabelValues(status).Inc()
	f.metrics.duration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

type forwarderMetrics struct {
	published  *prometheus.CounterVec   // by status
	duration   *prometheus.HistogramVec // by status
	dropped    prometheus.Counter
	queueDepth prometheus.Gauge
}

func newForwarderMetrics(registry metric.MetricsRegistrar, prefix string) (*forwarderMetrics, error) {
	labels := prometheus.Labels{"component": prefix}
	m := &forwarderMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "genericcache",
			Subsystem:   "notify",
			Name:        "events_total",
			ConstLabels: labels,
			Help:        "Deletion events processed, by outcome",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "genericcache",
			Subsystem:   "notify",
			Name:        "publish_duration_seconds",
			ConstLabels: labels,
			Help:        "Time spent encoding and publishing a deletion event",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"status"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "genericcache",
			Subsystem:   "notify",
			Name:        "dropped_total",
			ConstLabels: labels,
			Help:        "Deletion events dropped because the queue was full or stopped",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "genericcache",
			Subsystem:   "notify",
			Name:        "queue_depth",
			ConstLabels: labels,
			Help:        "Deletion events waiting to be published",
		}),
	}

	if err := registry.RegisterCounterVec(prefix, "notify_events", m.published); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(prefix, "notify_publish_duration", m.duration); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "notify_dropped", m.dropped); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "notify_queue_depth", m.queueDepth); err != nil {
		return nil, err
	}
	return m, nil
}
