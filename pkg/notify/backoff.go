package notify

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/c360/genericcache/errors"
)

var (
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Backoff controls how a failed publish is retried.
type Backoff struct {
	MaxAttempts  int           // 1 = no retry
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration
	Multiplier   float64
	AddJitter    bool // up to 25% extra delay
}

// DefaultBackoff returns the backoff used by DefaultConfig.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// Validate checks if the backoff is usable.
func (b Backoff) Validate() error {
	switch {
	case b.InitialDelay < 0:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Backoff", "Validate", "initial_delay cannot be negative")
	case b.MaxDelay < 0:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Backoff", "Validate", "max_delay cannot be negative")
	case b.Multiplier < 0:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Backoff", "Validate", "multiplier cannot be negative")
	case b.MaxDelay > 0 && b.MaxDelay < b.InitialDelay:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Backoff", "Validate", "max_delay must be >= initial_delay")
	}
	return nil
}

func (b Backoff) withDefaults() Backoff {
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = 1
	}
	if b.InitialDelay == 0 {
		b.InitialDelay = 50 * time.Millisecond
	}
	if b.MaxDelay == 0 {
		b.MaxDelay = 2 * time.Second
	}
	if b.Multiplier == 0 {
		b.Multiplier = 2.0
	}
	if b.Multiplier > 1000 {
		b.Multiplier = 1000
	}
	return b
}

// retry runs fn until it succeeds, returns an error that is not transient,
// ctx is done or attempts run out.
func retry(ctx context.Context, b Backoff, fn func() error) error {
	b = b.withDefaults()

	var lastErr error
	delay := b.InitialDelay

	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.IsTransient(err) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt+1, ctx.Err())
		}
		if attempt == b.MaxAttempts {
			break
		}

		sleep := delay
		if b.AddJitter && delay >= 4 {
			randMu.Lock()
			sleep += time.Duration(randSource.Int63n(int64(delay / 4)))
			randMu.Unlock()
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}

		next := float64(delay) * b.Multiplier
		if next > float64(b.MaxDelay) {
			delay = b.MaxDelay
		} else {
			delay = time.Duration(next)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", errors.ErrMaxRetriesExceeded, b.MaxAttempts, lastErr)
}
