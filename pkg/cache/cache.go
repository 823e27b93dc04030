package cache

import (
	"log/slog"
	"sync"

	"github.com/c360/genericcache/errors"
)

// DeleteCallback is invoked for every entry that leaves the cache, with the
// key, why it left and the value it held.
type DeleteCallback[V any] func(key string, reason DeletionReason, value V)

// deletion is a notification collected under the engine lock and dispatched
// after the lock is released.
type deletion[V any] struct {
	key    string
	reason DeletionReason
	value  V
}

// Cache is a thread-safe, bounded LRU cache that notifies subscribers of
// every deletion.
//
// The entry store and the recency list are two views of one state. Every
// sequence that mutates either, including the promotion done by a TryGet
// hit, runs under mu, so callers never observe them disagreeing or the entry
// count above MaxSize. Deletion callbacks run after mu is released and may
// call back into the cache.
type Cache[V any] struct {
	mu      sync.Mutex
	maxSize int
	name    string
	store   *entryStore[V]
	recency *recencyList
	subs    *subscriptionRegistry[V]

	logger  *slog.Logger
	stats   *Statistics   // ALWAYS initialized
	metrics *cacheMetrics // Optional, if metrics enabled
}

// New creates a cache holding at most cfg.MaxSize entries.
// A non-positive MaxSize fails with an error wrapping errors.ErrInvalidConfig.
func New[V any](cfg Config, options ...Option[V]) (*Cache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Cache", "New", "config validation")
	}
	opts := applyOptions(options...)

	var metrics *cacheMetrics
	if opts.metricsReg != nil {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.Wrap(err, "Cache", "New", "metrics registration")
		}
	}

	name := cfg.Name
	if name == "" {
		name = DefaultConfig().Name
	}

	c := &Cache[V]{
		maxSize: cfg.MaxSize,
		name:    name,
		store:   newEntryStore[V](cfg.MaxSize),
		recency: newRecencyList(),
		subs:    newSubscriptionRegistry[V](),
		logger:  opts.logger.With("cache", name),
		stats:   NewStatistics(),
		metrics: metrics,
	}

	for _, callback := range opts.subscribers {
		c.SubscribeDelete(callback)
	}

	return c, nil
}

// TryGet returns the value for key and promotes it to most recently used.
// A miss has no side effects beyond statistics.
func (c *Cache[V]) TryGet(key string) (V, bool) {
	value, found, _ := c.tryGetMatching(key, nil)
	return value, found
}

// tryGetMatching looks key up and promotes it only when match accepts the
// value (a nil match accepts everything).
func (c *Cache[V]) tryGetMatching(key string, match func(V) bool) (value V, found, matched bool) {
	c.mu.Lock()
	value, found = c.store.tryGet(key)
	if found {
		matched = match == nil || match(value)
		if matched {
			c.recency.touch(key)
		}
	}
	c.mu.Unlock()

	switch {
	case !found:
		c.stats.Miss()
		if c.metrics != nil {
			c.metrics.recordMiss()
		}
		c.logger.Debug("Cache miss", "key", key)
	case matched:
		c.stats.Hit()
		if c.metrics != nil {
			c.metrics.recordHit()
		}
		c.logger.Debug("Cache hit", "key", key)
	}

	return value, found, matched
}

// Set stores value under key and promotes key to most recently used.
//
// When key is new and the cache is full, the least recently used entry is
// evicted first and reported with ReasonCapacityReached. Overwriting an
// existing key never evicts. Set reports whether an eviction happened.
func (c *Cache[V]) Set(key string, value V) bool {
	var (
		evicted  deletion[V]
		didEvict bool
	)

	c.mu.Lock()
	if !c.store.contains(key) && c.store.count() >= c.maxSize {
		if victim, ok := c.recency.popEvictCandidate(); ok {
			old, _ := c.store.remove(victim)
			evicted = deletion[V]{key: victim, reason: ReasonCapacityReached, value: old}
			didEvict = true
		}
	}
	c.store.set(key, value)
	c.recency.touch(key)
	size := c.store.count()
	c.mu.Unlock()

	c.stats.Set()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.recordSet()
		c.metrics.updateSize(size)
	}
	c.logger.Debug("Key added to cache", "key", key)

	if didEvict {
		c.stats.Eviction()
		if c.metrics != nil {
			c.metrics.recordDeletion(ReasonCapacityReached, 1)
		}
		c.logger.Info("Cache capacity reached, evicted least recently used key",
			"evicted_key", evicted.key, "max_size", c.maxSize)
		c.dispatch(evicted)
	}

	return didEvict
}

// Delete removes key and reports ReasonManualDelete with the removed value.
// It returns false, without notifying anyone, when key is absent.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	value, ok := c.store.remove(key)
	if ok {
		c.recency.remove(key)
	}
	size := c.store.count()
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("Key not found for delete", "key", key)
		return false
	}

	c.stats.Delete()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.recordDeletion(ReasonManualDelete, 1)
		c.metrics.updateSize(size)
	}
	c.logger.Info("Key removed from cache", "key", key)

	c.dispatch(deletion[V]{key: key, reason: ReasonManualDelete, value: value})
	return true
}

// Purge removes every entry and reports each one with ReasonPurge,
// least recently used first.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	keys := c.recency.keys()
	removed := make([]deletion[V], 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		value, _ := c.store.tryGet(keys[i])
		removed = append(removed, deletion[V]{key: keys[i], reason: ReasonPurge, value: value})
	}
	c.store.clear()
	c.recency.clear()
	c.mu.Unlock()

	c.stats.Purged(len(removed))
	c.stats.UpdateSize(0)
	if c.metrics != nil {
		c.metrics.recordDeletion(ReasonPurge, len(removed))
		c.metrics.updateSize(0)
	}
	c.logger.Info("Purging cache", "entries", len(removed))

	for _, d := range removed {
		c.dispatch(d)
	}
}

// SubscribeDelete registers callback for every future deletion and returns
// its subscription id.
func (c *Cache[V]) SubscribeDelete(callback DeleteCallback[V]) string {
	return c.subscribe(func(key string, reason DeletionReason, value V) error {
		callback(key, reason, value)
		return nil
	})
}

func (c *Cache[V]) subscribe(handler deleteHandler[V]) string {
	id := c.subs.subscribe(handler)
	if c.metrics != nil {
		c.metrics.updateSubscriptions(c.subs.count())
	}
	c.logger.Info("Subscribed to deletion", "subscription_id", id)
	return id
}

// UnsubscribeDelete removes a subscription. Unknown or already removed ids
// return false. It waits for callbacks of that subscription running on other
// goroutines, so none runs after it returns; a callback may unsubscribe itself.
func (c *Cache[V]) UnsubscribeDelete(id string) bool {
	removed := c.subs.unsubscribe(id)
	if !removed {
		c.logger.Debug("Subscription not found", "subscription_id", id)
		return false
	}
	if c.metrics != nil {
		c.metrics.updateSubscriptions(c.subs.count())
	}
	c.logger.Info("Unsubscribed from deletion", "subscription_id", id)
	return true
}

// dispatch fans a deletion out to every subscriber. Failures are logged and
// counted, never returned to the caller of the cache operation.
func (c *Cache[V]) dispatch(d deletion[V]) {
	for _, err := range c.subs.broadcast(d.key, d.reason, d.value) {
		c.stats.SubscriberFailure()
		if c.metrics != nil {
			c.metrics.recordSubscriberFailure()
		}
		c.logger.Warn("Deletion subscriber failed",
			"key", d.key, "reason", d.reason.String(), "error", err)
	}
}

// Peek returns the value for key without promoting it. It does not take the
// engine lock.
func (c *Cache[V]) Peek(key string) (V, bool) {
	return c.store.tryGet(key)
}

// Contains reports whether key is present without promoting it.
func (c *Cache[V]) Contains(key string) bool {
	return c.store.contains(key)
}

// Count returns the current number of entries.
func (c *Cache[V]) Count() int {
	return c.store.count()
}

// Keys returns the keys in most to least recently used order.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recency.len() == 0 {
		return nil
	}
	return c.recency.keys()
}

// MaxSize returns the configured capacity.
func (c *Cache[V]) MaxSize() int {
	return c.maxSize
}

// Name returns the instance name used in logs and metrics.
func (c *Cache[V]) Name() string {
	return c.name
}

// Subscribers returns the number of active deletion subscriptions.
func (c *Cache[V]) Subscribers() int {
	return c.subs.count()
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() *Statistics {
	return c.stats
}
