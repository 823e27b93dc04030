package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/c360/genericcache/config"
)

// CLIConfig holds command-line configuration. Apart from ConfigPath and the
// boolean switches, a flag only overrides the loaded configuration when it
// was given explicitly.
type CLIConfig struct {
	ConfigPath      string
	MaxSize         int
	LogLevel        string
	LogFormat       string
	MetricsPort     int
	NATSURL         string
	NATSSubject     string
	Serve           bool
	ShutdownTimeout time.Duration
	ShowVersion     bool

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{set: make(map[string]bool)}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("GENERICCACHE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: GENERICCACHE_CONFIG)")
	fs.IntVar(&cfg.MaxSize, "max-size", demoMaxSize,
		"Maximum number of cache entries (env: GENERICCACHE_MAX_SIZE)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info",
		"Log level: debug, info, warn, error (env: GENERICCACHE_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", "text",
		"Log format: json, text (env: GENERICCACHE_LOG_FORMAT)")
	fs.IntVar(&cfg.MetricsPort, "metrics-port", 0,
		"Serve Prometheus metrics on this port, 0 to disable (env: GENERICCACHE_METRICS_PORT)")
	fs.StringVar(&cfg.NATSURL, "nats-url", "",
		"Forward deletion events to this NATS server (env: GENERICCACHE_NATS_URL)")
	fs.StringVar(&cfg.NATSSubject, "nats-subject", "",
		"Subject prefix for deletion events (env: GENERICCACHE_NATS_SUBJECT)")
	fs.BoolVar(&cfg.Serve, "serve",
		getEnvBool("GENERICCACHE_SERVE", false),
		"Keep running after the demo until interrupted (env: GENERICCACHE_SERVE)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("GENERICCACHE_SHUTDOWN_TIMEOUT", 5*time.Second),
		"Time allowed for draining deletion events on exit (env: GENERICCACHE_SHUTDOWN_TIMEOUT)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	fs.Usage = func() { printUsage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })

	return cfg, nil
}

// apply copies explicitly given flags over the loaded configuration.
func (c *CLIConfig) apply(cfg *config.Config) {
	if c.set["max-size"] {
		cfg.Cache.MaxSize = c.MaxSize
	}
	if c.set["log-level"] {
		cfg.Log.Level = c.LogLevel
	}
	if c.set["log-format"] {
		cfg.Log.Format = c.LogFormat
	}
	if c.set["metrics-port"] {
		cfg.Metrics.Port = c.MetricsPort
		cfg.Metrics.Enabled = c.MetricsPort > 0
	}
	if c.set["nats-url"] {
		cfg.Notify.URL = c.NATSURL
		cfg.Notify.Enabled = c.NATSURL != ""
	}
	if c.set["nats-subject"] {
		cfg.Notify.Subject = c.NATSSubject
	}
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - bounded LRU cache with deletion notifications

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Precedence: flags > environment > config file > defaults.

Examples:
  # Run the demo with a capacity of 2
  %s

  # Export metrics and forward deletions to NATS
  %s --metrics-port=9090 --nats-url=nats://localhost:4222 --serve

Version: %s
`, appName, appName, Version)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
