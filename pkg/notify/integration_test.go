//go:build integration

package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/c360/genericcache/pkg/cache"
)

func startNATSContainer(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2.11.7-alpine",
		ExposedPorts: []string{"4222/tcp"},
		WaitingFor:   wait.ForListeningPort("4222/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background()) // Best effort test cleanup
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	return fmt.Sprintf("nats://%s:%s", host, port.Port())
}

func TestIntegration_ForwardsDeletionsToNATS(t *testing.T) {
	ctx := context.Background()
	url := startNATSContainer(ctx, t)

	conn, err := Connect(ctx, url, "genericcache-test", quietLogger())
	require.NoError(t, err)
	defer conn.Close()

	received := make(chan *nats.Msg, 8)
	sub, err := conn.ChanSubscribe("it.deletions.>", received)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, conn.Flush())

	cfg := DefaultConfig()
	cfg.Subject = "it.deletions"
	f, err := NewForwarder[int](conn, cfg, WithLogger[int](quietLogger()))
	require.NoError(t, err)
	require.NoError(t, f.Start(ctx))

	c, err := cache.New[int](cache.Config{Name: "orders", MaxSize: 2}, cache.WithLogger[int](quietLogger()))
	require.NoError(t, err)
	f.Attach(c)

	c.Set("K1", 1)
	c.Set("K2", 2)
	c.Set("K3", 3) // evicts K1
	c.Delete("K2")

	require.NoError(t, f.Stop(5*time.Second))
	require.NoError(t, conn.Flush())

	got := map[string]Event[int]{}
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case msg := <-received:
			event, err := UnmarshalEvent[int](msg.Data)
			require.NoError(t, err)
			assert.Equal(t, cfg.Subject+"."+event.Reason.String(), msg.Subject)
			got[event.Key] = event
		case <-timeout:
			t.Fatalf("received %d of 2 events", len(got))
		}
	}

	assert.Equal(t, cache.ReasonCapacityReached, got["K1"].Reason)
	assert.Equal(t, 1, got["K1"].Value)
	assert.Equal(t, cache.ReasonManualDelete, got["K2"].Reason)
	assert.Equal(t, "orders", got["K2"].Cache)
	assert.Equal(t, int64(2), f.Stats().Published)
}
