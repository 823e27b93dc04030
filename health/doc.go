// Package health reports the state of the cache and its deletion forwarder.
//
// A Status is healthy, degraded or unhealthy. Monitor keeps the latest
// Status per component and aggregates them: any unhealthy component makes
// the system unhealthy, otherwise any degraded component makes it degraded.
//
//	monitor := health.NewMonitor()
//	monitor.Update("cache", health.CacheStatus(c.Name(), c.Stats().Summary()))
//	system := monitor.AggregateHealth("genericcache")
//	if system.IsUnhealthy() {
//		// return 503
//	}
package health
