package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/genericcache/errors"
)

func fastBackoff(attempts int) Backoff {
	return Backoff{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastBackoff(5), func() error {
		calls++
		if calls < 3 {
			return errors.ErrConnectionTimeout
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastBackoff(4), func() error {
		calls++
		return errors.ErrNoConnection
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, errors.ErrMaxRetriesExceeded)
	assert.ErrorIs(t, err, errors.ErrNoConnection)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := fmt.Errorf("subject is malformed")
	err := retry(context.Background(), fastBackoff(5), func() error {
		calls++
		return permanent
	})
	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := retry(context.Background(), Backoff{}, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, Backoff{MaxAttempts: 10, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2}, func() error {
		calls++
		cancel()
		return errors.ErrConnectionLost
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoff_Validate(t *testing.T) {
	assert.NoError(t, DefaultBackoff().Validate())
	assert.NoError(t, Backoff{}.Validate())

	for name, b := range map[string]Backoff{
		"negative initial":    {InitialDelay: -1},
		"negative max":        {MaxDelay: -1},
		"negative multiplier": {Multiplier: -1},
		"max below initial":   {InitialDelay: time.Second, MaxDelay: time.Millisecond},
	} {
		t.Run(name, func(t *testing.T) {
			err := b.Validate()
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}
