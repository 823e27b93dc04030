// Package cache provides a generic, thread-safe, bounded LRU cache with
// deletion notifications, built-in statistics and optional Prometheus metrics.
//
// # Quick Start
//
//	c, err := cache.New[int](cache.Config{MaxSize: 3})
//	if err != nil {
//		log.Fatal(err) // MaxSize <= 0
//	}
//
//	id := c.SubscribeDelete(func(key string, reason cache.DeletionReason, value int) {
//		log.Printf("%s left the cache: %s", key, reason)
//	})
//	defer c.UnsubscribeDelete(id)
//
//	c.Set("K1", 100)
//	value, ok := c.TryGet("K1") // 100, true; K1 is now most recently used
//
// # Eviction
//
// Capacity is counted in entries. Inserting a new key into a full cache evicts
// exactly one entry, the least recently used one, before the insert. Both a
// TryGet hit and a Set count as use; Peek, Contains and failed reads do not.
// Overwriting an existing key never evicts.
//
// # Deletion Notifications
//
// Every entry that leaves the cache is reported once to each subscriber:
//   - ReasonManualDelete: Delete removed the key
//   - ReasonPurge: Purge removed the key
//   - ReasonCapacityReached: Set evicted the key to make room
//
// Callbacks run on the goroutine that performed the operation, after the
// cache lock has been released, so a callback may read or write the cache.
// A panicking callback is recovered, logged at warn level and counted in
// Statistics.SubscriberFailures; the remaining subscribers still run and the
// cache operation still succeeds.
//
// # Heterogeneous Payloads
//
// A Cache[V] holds one payload type. When different keys need different
// types, use a Cache[any] with the typed helpers:
//
//	c, _ := cache.New[any](cache.DefaultConfig())
//	c.Set("user", &User{})
//	u, ok, err := cache.GetAs[*User](c, "user")      // err wraps errors.ErrTypeMismatch on the wrong type
//	cache.SubscribeDeleteAs(c, func(key string, reason cache.DeletionReason, u *User) { ... })
//
// # Observability
//
// Statistics are always collected with atomic counters and available through
// Stats(). WithMetrics additionally exports them to Prometheus under the
// genericcache_cache_* names with a component label. WithLogger routes hit,
// miss, eviction and subscription events to a slog.Logger.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Mutations and read-promotions are
// serialized by a single mutex covering the entry store and recency list.
// Peek, Contains and Count only read the store, which is independently safe
// for concurrent point lookups.
package cache
