// Package notify forwards cache deletion notifications to a message bus.
//
// A Forwarder is a cache deletion callback that never blocks the cache
// operation that triggered it. Each deletion becomes a JSON Event that is
// queued to a bounded pool of publishing workers; when the queue is full the
// event is dropped and counted. Publishing retries transient failures with
// exponential backoff.
//
//	conn, err := notify.Connect(ctx, nats.DefaultURL, "genericcache", logger)
//	...
//	fwd, err := notify.NewForwarder[int](conn, notify.DefaultConfig(), notify.WithLogger[int](logger))
//	...
//	if err := fwd.Start(ctx); err != nil { ... }
//	defer fwd.Stop(5 * time.Second)
//	fwd.Attach(c) // c is a *cache.Cache[int]
//
// Any type with a Publish(subject string, data []byte) error method can be
// used as the Publisher; *nats.Conn satisfies it.
package notify
