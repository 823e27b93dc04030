package cache

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/genericcache/errors"
)

func TestSubscriptionRegistry_SubscribeAndUnsubscribe(t *testing.T) {
	r := newSubscriptionRegistry[int]()

	calls := 0
	id := r.subscribe(func(string, DeletionReason, int) error {
		calls++
		return nil
	})
	require.NotEmpty(t, id)
	assert.Equal(t, 1, r.count())

	assert.Empty(t, r.broadcast("k", ReasonPurge, 1))
	assert.Equal(t, 1, calls)

	assert.True(t, r.unsubscribe(id))
	assert.False(t, r.unsubscribe(id))
	assert.Equal(t, 0, r.count())

	assert.Nil(t, r.broadcast("k", ReasonPurge, 1))
	assert.Equal(t, 1, calls)
}

func TestSubscriptionRegistry_BroadcastCollectsFailures(t *testing.T) {
	r := newSubscriptionRegistry[string]()
	handlerErr := fmt.Errorf("downstream rejected")

	delivered := 0
	r.subscribe(func(string, DeletionReason, string) error {
		delivered++
		return nil
	})
	r.subscribe(func(string, DeletionReason, string) error {
		return handlerErr
	})
	r.subscribe(func(string, DeletionReason, string) error {
		panic("boom")
	})

	failures := r.broadcast("k", ReasonManualDelete, "v")
	require.Len(t, failures, 2)
	assert.Equal(t, 1, delivered)

	var sawHandlerErr, sawPanic bool
	for _, err := range failures {
		assert.ErrorIs(t, err, errors.ErrSubscriberFailed)
		assert.Contains(t, err.Error(), "handle manual_delete")
		if stderrors.Is(err, handlerErr) {
			sawHandlerErr = true
		}
		if strings.Contains(err.Error(), "panic: boom") {
			sawPanic = true
		}
	}
	assert.True(t, sawHandlerErr)
	assert.True(t, sawPanic)
}

func TestSubscriptionRegistry_RemovedDuringBroadcastIsSkipped(t *testing.T) {
	r := newSubscriptionRegistry[int]()

	var ids []string
	calls := 0
	handler := func(string, DeletionReason, int) error {
		calls++
		// The first handler to run removes every subscription.
		for _, id := range ids {
			r.unsubscribe(id)
		}
		return nil
	}
	ids = append(ids, r.subscribe(handler), r.subscribe(handler), r.subscribe(handler))

	r.broadcast("k", ReasonPurge, 0)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, r.count())
}

func TestSubscriptionRegistry_UnsubscribeWaitsForRunningHandler(t *testing.T) {
	r := newSubscriptionRegistry[int]()

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int
	id := r.subscribe(func(string, DeletionReason, int) error {
		calls++
		if calls == 1 {
			close(entered)
			<-release
		}
		return nil
	})

	broadcastDone := make(chan struct{})
	go func() {
		defer close(broadcastDone)
		r.broadcast("k", ReasonManualDelete, 1)
	}()
	<-entered

	unsubscribed := make(chan bool, 1)
	go func() { unsubscribed <- r.unsubscribe(id) }()

	select {
	case <-unsubscribed:
		t.Fatal("unsubscribe returned while the handler was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case removed := <-unsubscribed:
		assert.True(t, removed)
	case <-time.After(time.Second):
		t.Fatal("unsubscribe did not return after the handler finished")
	}
	<-broadcastDone

	assert.Empty(t, r.broadcast("k", ReasonManualDelete, 2))
	assert.Equal(t, 1, calls)
}

func TestSubscriptionRegistry_HandlerMayUnsubscribeWhileRunningElsewhere(t *testing.T) {
	r := newSubscriptionRegistry[int]()

	entered := make(chan struct{})
	release := make(chan struct{})
	var id string
	id = r.subscribe(func(key string, _ DeletionReason, _ int) error {
		if key == "slow" {
			close(entered)
			<-release
			return nil
		}
		r.unsubscribe(id)
		return nil
	})

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		r.broadcast("slow", ReasonPurge, 0)
	}()
	<-entered

	selfDone := make(chan struct{})
	go func() {
		defer close(selfDone)
		r.broadcast("self", ReasonPurge, 0)
	}()

	// The self-removing handler waits only for the other goroutine.
	select {
	case <-selfDone:
		t.Fatal("self removal returned while another invocation was running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-slowDone
	<-selfDone
	assert.Equal(t, 0, r.count())
}

func TestGoroutineID(t *testing.T) {
	own := goroutineID()
	assert.NotZero(t, own)
	assert.Equal(t, own, goroutineID())

	other := make(chan uint64)
	go func() { other <- goroutineID() }()
	assert.NotEqual(t, own, <-other)
}
