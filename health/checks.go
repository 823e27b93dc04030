package health

import (
	"fmt"

	"github.com/c360/genericcache/pkg/cache"
	"github.com/c360/genericcache/pkg/notify"
)

// CacheStatus reports a cache as degraded once any deletion callback has
// failed, and healthy otherwise.
func CacheStatus(name string, stats cache.StatsSummary) Status {
	if stats.SubscriberFailures > 0 {
		return NewDegraded(name, fmt.Sprintf("%d deletion callbacks failed", stats.SubscriberFailures))
	}
	return NewHealthy(name, fmt.Sprintf("%d entries, hit ratio %.2f", stats.CurrentSize, stats.HitRatio))
}

// ForwarderStatus reports a deletion forwarder as unhealthy while its bus
// connection is down and degraded once events have been dropped or failed.
func ForwarderStatus(name string, stats notify.ForwarderStats, connected bool) Status {
	switch {
	case !connected:
		return NewUnhealthy(name, "message bus disconnected")
	case stats.Dropped > 0 || stats.Failed > 0:
		return NewDegraded(name, fmt.Sprintf("%d events dropped, %d failed", stats.Dropped, stats.Failed))
	default:
		return NewHealthy(name, fmt.Sprintf("%d events published", stats.Published))
	}
}
