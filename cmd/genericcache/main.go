// Package main runs a demonstration of the genericcache LRU cache: it fills a
// small cache past capacity, logs every deletion notification and optionally
// exports metrics and forwards deletions to NATS.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/c360/genericcache/config"
	"github.com/c360/genericcache/errors"
	"github.com/c360/genericcache/health"
	"github.com/c360/genericcache/metric"
	"github.com/c360/genericcache/pkg/cache"
	"github.com/c360/genericcache/pkg/notify"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "genericcache"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli, err := parseFlags(args, stderr)
	if stderrors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cli.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger := setupLogger(stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	logger.Info("Starting genericcache",
		"config_path", cli.ConfigPath,
		"max_size", cfg.Cache.MaxSize,
		"metrics", cfg.Metrics.Enabled,
		"notify", cfg.Notify.Enabled)

	return serve(ctx, cfg, cli, logger)
}

// loadConfig layers defaults, the config file, environment and flags.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	defaults := config.Defaults()
	defaults.Cache.MaxSize = demoMaxSize
	defaults.Cache.Name = appName

	loader := config.NewLoader()
	loader.SetDefaults(defaults)
	if cli.ConfigPath != "" {
		loader.AddLayer(cli.ConfigPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cli.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config, cli *CLIConfig, logger *slog.Logger) error {
	var registry *metric.MetricsRegistry
	cacheOpts := []cache.Option[string]{cache.WithLogger[string](logger)}
	if cfg.Metrics.Enabled {
		registry = metric.NewMetricsRegistry()
		cacheOpts = append(cacheOpts, cache.WithMetrics[string](registry, cfg.Cache.Name))
	}

	c, err := cache.New[string](cfg.Cache, cacheOpts...)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}

	var fwd *forwarding
	if cfg.Notify.Enabled {
		fwd, err = startForwarder(ctx, cfg, c, registry, logger)
		if err != nil {
			return err
		}
		defer fwd.shutdown(cli.ShutdownTimeout)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if registry != nil {
		monitor := health.NewMonitor()
		srv := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		srv.SetHealthCheck(func() metric.HealthReport {
			monitor.Update("cache", health.CacheStatus(c.Name(), c.Stats().Summary()))
			if fwd != nil {
				monitor.Update("notify", fwd.status())
			}
			return monitor.AggregateHealth(appName)
		})
		g.Go(func() error { return srv.Start(gctx) })
		logger.Info("Metrics server listening", "address", srv.Address())
	}

	g.Go(func() error {
		if err := runDemo(c, logger); err != nil {
			return err
		}
		if !cli.Serve {
			cancel()
			return nil
		}
		logger.Info("Demo complete, waiting for shutdown signal")
		<-gctx.Done()
		return nil
	})

	err = g.Wait()

	stats := c.Stats().Summary()
	logger.Info("Shutdown complete",
		"sets", stats.Sets,
		"hits", stats.Hits,
		"misses", stats.Misses,
		"evictions", stats.Evictions,
		"purged", stats.Purged)
	return err
}

// forwarding publishes a cache's deletions to NATS.
type forwarding struct {
	cache     *cache.Cache[string]
	conn      *nats.Conn
	forwarder *notify.Forwarder[string]
	id        string
	drain     time.Duration
	cancel    context.CancelFunc
	logger    *slog.Logger
}

// startForwarder connects to NATS and attaches a deletion forwarder to c.
func startForwarder(
	ctx context.Context,
	cfg *config.Config,
	c *cache.Cache[string],
	registry *metric.MetricsRegistry,
	logger *slog.Logger,
) (*forwarding, error) {
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := notify.Connect(connCtx, cfg.Notify.URL, appName, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	opts := []notify.Option[string]{notify.WithLogger[string](logger)}
	if registry != nil {
		opts = append(opts, notify.WithMetrics[string](registry, cfg.Cache.Name))
	}
	fwd, err := notify.NewForwarder[string](conn, cfg.Notify.Forwarder(), opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Workers outlive ctx so shutdown can drain events queued at exit.
	fwdCtx, fwdCancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := fwd.Start(fwdCtx); err != nil {
		fwdCancel()
		conn.Close()
		return nil, err
	}

	return &forwarding{
		cache:     c,
		conn:      conn,
		forwarder: fwd,
		id:        fwd.Attach(c),
		drain:     cfg.Notify.StopTimeout,
		cancel:    fwdCancel,
		logger:    logger,
	}, nil
}

func (f *forwarding) status() health.Status {
	return health.ForwarderStatus("notify", f.forwarder.Stats(), f.conn.IsConnected())
}

// shutdown detaches from the cache, drains queued events within the shorter
// of timeout and the configured stop timeout, then drains the connection.
func (f *forwarding) shutdown(timeout time.Duration) {
	f.cache.UnsubscribeDelete(f.id)

	drain := timeout
	if f.drain > 0 && f.drain < drain {
		drain = f.drain
	}
	if err := f.forwarder.Stop(drain); err != nil {
		f.logger.Warn("Deletion forwarder did not drain", "error", err, "fatal", errors.IsFatal(err))
	}
	f.cancel()

	if err := f.conn.Drain(); err != nil {
		f.logger.Warn("NATS drain failed, closing", "error", err)
		f.conn.Close()
	}
}
