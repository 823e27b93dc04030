package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/genericcache/errors"
)

// dispatcher runs a fixed number of workers over a bounded queue.
// submit never blocks: work that does not fit, or arrives while the
// dispatcher is not running, is dropped and counted.
type dispatcher[T any] struct {
	workers   int
	queueSize int
	process   func(context.Context, T) error

	queue chan T
	wg    sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	submitted int64
	processed int64
	failed    int64
	dropped   int64
}

// DispatcherStats is a snapshot of dispatcher counters.
type DispatcherStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

func newDispatcher[T any](workers, queueSize int, process func(context.Context, T) error) *dispatcher[T] {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &dispatcher[T]{
		workers:   workers,
		queueSize: queueSize,
		process:   process,
		queue:     make(chan T, queueSize),
	}
}

func (d *dispatcher[T]) start(ctx context.Context) error {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if d.started {
		return errors.ErrAlreadyStarted
	}
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.started = true
	return nil
}

// submit enqueues work without blocking.
func (d *dispatcher[T]) submit(work T) error {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if !d.started {
		atomic.AddInt64(&d.dropped, 1)
		return errors.ErrNotStarted
	}
	if d.stopped {
		atomic.AddInt64(&d.dropped, 1)
		return errors.ErrAlreadyStopped
	}

	select {
	case d.queue <- work:
		atomic.AddInt64(&d.submitted, 1)
		return nil
	default:
		atomic.AddInt64(&d.dropped, 1)
		return errors.ErrQueueFull
	}
}

// stop closes the queue and waits for queued work to drain. Submissions
// fail fast while it waits.
func (d *dispatcher[T]) stop(timeout time.Duration) error {
	d.lifecycleMu.Lock()
	if !d.started || d.stopped {
		d.lifecycleMu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return errors.ErrStopTimeout
	}
}

func (d *dispatcher[T]) stats() DispatcherStats {
	return DispatcherStats{
		Workers:    d.workers,
		QueueSize:  d.queueSize,
		QueueDepth: len(d.queue),
		Submitted:  atomic.LoadInt64(&d.submitted),
		Processed:  atomic.LoadInt64(&d.processed),
		Failed:     atomic.LoadInt64(&d.failed),
		Dropped:    atomic.LoadInt64(&d.dropped),
	}
}

func (d *dispatcher[T]) worker(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-d.queue:
			if !ok {
				return
			}
			err := d.process(ctx, work)
			atomic.AddInt64(&d.processed, 1)
			if err != nil {
				atomic.AddInt64(&d.failed, 1)
			}
		}
	}
}
