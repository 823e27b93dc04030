package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks cache activity. Counters are atomic so recording never
// contends with the engine lock.
type Statistics struct {
	hits               int64
	misses             int64
	sets               int64
	deletes            int64
	evictions          int64
	purged             int64
	subscriberFailures int64

	// Protected by mutex
	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	peakSize    int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Hit records a cache hit.
func (s *Statistics) Hit() { atomic.AddInt64(&s.hits, 1) }

// Miss records a cache miss.
func (s *Statistics) Miss() { atomic.AddInt64(&s.misses, 1) }

// Set records a cache set operation.
func (s *Statistics) Set() { atomic.AddInt64(&s.sets, 1) }

// Delete records a manual delete that removed an entry.
func (s *Statistics) Delete() { atomic.AddInt64(&s.deletes, 1) }

// Eviction records a capacity eviction.
func (s *Statistics) Eviction() { atomic.AddInt64(&s.evictions, 1) }

// Purged records entries removed by a purge.
func (s *Statistics) Purged(n int) { atomic.AddInt64(&s.purged, int64(n)) }

// SubscriberFailure records a deletion callback that failed.
func (s *Statistics) SubscriberFailure() { atomic.AddInt64(&s.subscriberFailures, 1) }

// UpdateSize updates the current cache size.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.peakSize {
		s.peakSize = size
	}
	s.mu.Unlock()
}

// Hits returns the total number of cache hits.
func (s *Statistics) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the total number of cache misses.
func (s *Statistics) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Sets returns the total number of set operations.
func (s *Statistics) Sets() int64 { return atomic.LoadInt64(&s.sets) }

// Deletes returns the total number of manual deletes.
func (s *Statistics) Deletes() int64 { return atomic.LoadInt64(&s.deletes) }

// Evictions returns the total number of capacity evictions.
func (s *Statistics) Evictions() int64 { return atomic.LoadInt64(&s.evictions) }

// PurgedEntries returns the total number of entries removed by purges.
func (s *Statistics) PurgedEntries() int64 { return atomic.LoadInt64(&s.purged) }

// SubscriberFailures returns the number of failed deletion callbacks.
func (s *Statistics) SubscriberFailures() int64 { return atomic.LoadInt64(&s.subscriberFailures) }

// CurrentSize returns the current number of entries in the cache.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// PeakSize returns the largest number of entries the cache has held.
func (s *Statistics) PeakSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peakSize
}

// HitRatio returns the cache hit ratio (0.0 to 1.0).
func (s *Statistics) HitRatio() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// Uptime returns how long the cache has been running.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// StatsSummary is a point-in-time snapshot of Statistics.
type StatsSummary struct {
	Hits               int64         `json:"hits"`
	Misses             int64         `json:"misses"`
	Sets               int64         `json:"sets"`
	Deletes            int64         `json:"deletes"`
	Evictions          int64         `json:"evictions"`
	Purged             int64         `json:"purged"`
	SubscriberFailures int64         `json:"subscriber_failures"`
	CurrentSize        int64         `json:"current_size"`
	PeakSize           int64         `json:"peak_size"`
	HitRatio           float64       `json:"hit_ratio"`
	Uptime             time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Hits:               s.Hits(),
		Misses:             s.Misses(),
		Sets:               s.Sets(),
		Deletes:            s.Deletes(),
		Evictions:          s.Evictions(),
		Purged:             s.PurgedEntries(),
		SubscriberFailures: s.SubscriberFailures(),
		CurrentSize:        s.CurrentSize(),
		PeakSize:           s.PeakSize(),
		HitRatio:           s.HitRatio(),
		Uptime:             s.Uptime(),
	}
}
