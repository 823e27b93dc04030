package main

import (
	"fmt"
	"log/slog"

	"github.com/c360/genericcache/pkg/cache"
)

// demoMaxSize is the capacity at which the demo's third insert evicts key2.
const demoMaxSize = 2

// runDemo walks a cache through an insert, promote and evict sequence and
// reports what it observed. Deletion notifications are logged by a
// subscription that is removed before returning.
func runDemo(c *cache.Cache[string], logger *slog.Logger) error {
	id := c.SubscribeDelete(func(key string, reason cache.DeletionReason, _ string) {
		logger.Info(fmt.Sprintf("Key %s was deleted because %s", key, reason), "key", key, "reason", reason.String())
	})
	defer c.UnsubscribeDelete(id)

	c.Set("key1", "value1")
	c.Set("key2", "value2")

	if value1, ok := c.TryGet("key1"); ok {
		logger.Info("Value of key1 is "+value1, "key", "key1")
	} else {
		logger.Warn("Value of key1 was already evicted", "max_size", c.MaxSize())
	}

	c.Set("key3", "value3")

	if _, ok := c.TryGet("key2"); ok {
		if c.MaxSize() <= demoMaxSize {
			return fmt.Errorf("demo: key2 still cached at capacity %d", c.MaxSize())
		}
		logger.Info("Value of key2 is still cached", "max_size", c.MaxSize())
	} else {
		logger.Info("Value of key2 is not in cache, because it was correctly removed")
	}

	c.Purge()
	return nil
}
