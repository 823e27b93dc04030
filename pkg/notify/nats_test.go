package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/genericcache/errors"
)

func TestConnect_RequiresURL(t *testing.T) {
	conn, err := Connect(context.Background(), "", "test", quietLogger())
	require.Error(t, err)
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, errors.ErrMissingConfig)
}

func TestConnect_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := Connect(ctx, "nats://127.0.0.1:1", "test", quietLogger())
	require.Error(t, err)
	assert.Nil(t, conn)
	assert.True(t, errors.IsTransient(err))
}

func TestConnect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, "nats://127.0.0.1:1", "test", quietLogger())
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}
