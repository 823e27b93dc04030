// Package genericcache is an in-process, generic LRU cache with deletion
// notifications.
//
// # Layout
//
//   - pkg/cache: the cache engine, Cache[V], and its recency list, entry
//     store, subscription registry, statistics and Prometheus metrics
//   - pkg/notify: forwards deletion notifications to NATS as JSON events
//   - config: layered JSON/YAML/environment configuration
//   - errors: classified errors shared by every package
//   - metric: Prometheus registry and HTTP exposition
//   - health: component and system health for the /health endpoint
//   - cmd/genericcache: demo binary wiring all of the above
//
// # Quick Start
//
//	c, err := cache.New[string](cache.Config{MaxSize: 2})
//	if err != nil {
//		return err
//	}
//	c.SubscribeDelete(func(key string, reason cache.DeletionReason, value string) {
//		log.Printf("Key %s was deleted because %s", key, reason)
//	})
//	c.Set("key1", "value1")
//	c.Set("key2", "value2")
//	c.TryGet("key1")        // key1 becomes most recently used
//	c.Set("key3", "value3") // evicts key2: capacity_reached
//
// Every exit from the cache is reported exactly once per subscriber with one
// of three reasons: manual_delete, purge or capacity_reached.
package genericcache
