package cache

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/genericcache/errors"
)

// deleteHandler is the internal form of a deletion callback. Typed wrappers
// report payload conversion failures through the returned error.
type deleteHandler[V any] func(key string, reason DeletionReason, value V) error

// subscription tracks which goroutines are running its handler so that
// removal can wait for them. A handler may remove its own subscription.
type subscription[V any] struct {
	id      string
	handler deleteHandler[V]

	mu      sync.Mutex
	idle    *sync.Cond
	active  bool
	running map[uint64]int // goroutine id -> nested invocations
}

func newSubscription[V any](id string, handler deleteHandler[V]) *subscription[V] {
	sub := &subscription[V]{
		id:      id,
		handler: handler,
		active:  true,
		running: make(map[uint64]int),
	}
	sub.idle = sync.NewCond(&sub.mu)
	return sub
}

// enter reserves an invocation on goroutine gid. It fails once the
// subscription has been removed.
func (s *subscription[V]) enter(gid uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.running[gid]++
	return true
}

func (s *subscription[V]) leave(gid uint64) {
	s.mu.Lock()
	s.running[gid]--
	if s.running[gid] == 0 {
		delete(s.running, gid)
	}
	s.mu.Unlock()
	s.idle.Broadcast()
}

// deactivate blocks new invocations and waits for the ones running on
// goroutines other than gid.
func (s *subscription[V]) deactivate(gid uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	for s.runningElsewhere(gid) {
		s.idle.Wait()
	}
}

func (s *subscription[V]) runningElsewhere(gid uint64) bool {
	for other := range s.running {
		if other != gid {
			return true
		}
	}
	return false
}

// subscriptionRegistry maps subscription ids to deletion handlers.
type subscriptionRegistry[V any] struct {
	mu   sync.RWMutex
	subs map[string]*subscription[V]
}

func newSubscriptionRegistry[V any]() *subscriptionRegistry[V] {
	return &subscriptionRegistry[V]{
		subs: make(map[string]*subscription[V]),
	}
}

func (r *subscriptionRegistry[V]) subscribe(handler deleteHandler[V]) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	for _, taken := r.subs[id]; taken; _, taken = r.subs[id] {
		id = uuid.NewString()
	}

	r.subs[id] = newSubscription(id, handler)
	return id
}

// unsubscribe reports whether id named a live subscription. It returns once
// no other goroutine is running the handler, so the handler is never invoked
// after unsubscribe returns.
func (r *subscriptionRegistry[V]) unsubscribe(id string) bool {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
	}
	r.mu.Unlock()

	if ok {
		sub.deactivate(goroutineID())
	}
	return ok
}

func (r *subscriptionRegistry[V]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// broadcast invokes every registered handler once and collects failures.
// A failing handler never stops the fan-out.
func (r *subscriptionRegistry[V]) broadcast(key string, reason DeletionReason, value V) []error {
	r.mu.RLock()
	if len(r.subs) == 0 {
		r.mu.RUnlock()
		return nil
	}
	snapshot := make([]*subscription[V], 0, len(r.subs))
	for _, sub := range r.subs {
		snapshot = append(snapshot, sub)
	}
	r.mu.RUnlock()

	gid := goroutineID()
	var failures []error
	for _, sub := range snapshot {
		// Skip subscriptions removed after the snapshot was taken.
		if !sub.enter(gid) {
			continue
		}
		err := sub.invoke(key, reason, value)
		sub.leave(gid)
		if err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

func (s *subscription[V]) invoke(key string, reason DeletionReason, value V) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(fmt.Errorf("%w: panic: %v", errors.ErrSubscriberFailed, r),
				"subscription", s.id, "handle "+reason.String())
		}
	}()

	if handlerErr := s.handler(key, reason, value); handlerErr != nil {
		return errors.Wrap(fmt.Errorf("%w: %w", errors.ErrSubscriberFailed, handlerErr),
			"subscription", s.id, "handle "+reason.String())
	}
	return nil
}

// goroutineID parses the calling goroutine's id from its stack header,
// "goroutine 42 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, _ := strconv.ParseUint(string(fields[1]), 10, 64)
	return id
}
