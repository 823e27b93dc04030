package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/genericcache/errors"
)

// Connect dials a NATS server. The dial is abandoned when ctx is done; the
// returned connection reconnects on its own and logs its state changes.
func Connect(ctx context.Context, url, name string, logger *slog.Logger) (*nats.Conn, error) {
	if url == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "notify", "Connect", "nats url is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "nats", "url", url)

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.Info("NATS reconnected", "server", conn.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("NATS async error", "error", err)
		}),
	}

	type result struct {
		conn *nats.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := nats.Connect(url, opts...)
		done <- result{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		// Close a connection that completes after the caller gave up.
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, errors.WrapTransient(ctx.Err(), "notify", "Connect", "dial "+url)
	case r := <-done:
		if r.err != nil {
			return nil, errors.WrapTransient(r.err, "notify", "Connect", "dial "+url)
		}
		logger.Info("Connected to NATS", "server", r.conn.ConnectedUrl())
		return r.conn, nil
	}
}
