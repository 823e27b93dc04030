package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/genericcache/errors"
	"github.com/c360/genericcache/pkg/cache"
	"github.com/c360/genericcache/pkg/notify"
)

// Config represents the complete application configuration
type Config struct {
	Cache   cache.Config  `json:"cache"`
	Log     LogConfig     `json:"log"`
	Metrics MetricsConfig `json:"metrics"`
	Notify  NotifyConfig  `json:"notify"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path,omitempty"`
}

// NotifyConfig controls forwarding of deletion events to NATS.
type NotifyConfig struct {
	Enabled      bool          `json:"enabled"`
	URL          string        `json:"url"`
	Subject      string        `json:"subject"`
	Workers      int           `json:"workers"`
	QueueSize    int           `json:"queue_size"`
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	StopTimeout  time.Duration `json:"stop_timeout"`
}

// durationKeys lists the notify keys that hold durations.
var durationKeys = []string{"initial_delay", "max_delay", "stop_timeout"}

// Forwarder converts the section into a notify.Config.
func (n NotifyConfig) Forwarder() notify.Config {
	return notify.Config{
		Subject:   n.Subject,
		Workers:   n.Workers,
		QueueSize: n.QueueSize,
		Backoff: notify.Backoff{
			MaxAttempts:  n.MaxAttempts,
			InitialDelay: n.InitialDelay,
			MaxDelay:     n.MaxDelay,
			Multiplier:   2.0,
			AddJitter:    true,
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return errors.Wrap(err, "Config", "Validate", "cache section")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("log.format %q must be json or text", c.Log.Format))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
	}

	if c.Notify.Enabled {
		if c.Notify.URL == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
				"notify.url is required when notify is enabled")
		}
		if err := c.Notify.Forwarder().Validate(); err != nil {
			return errors.Wrap(err, "Config", "Validate", "notify section")
		}
	}

	return nil
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	defaults   *Config
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: false,
		envPrefix:  "GENERICCACHE",
	}
}

// SetDefaults replaces the base layer that files and environment override.
func (l *Loader) SetDefaults(cfg *Config) {
	l.defaults = cfg
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()
	if l.defaults != nil {
		copied := *l.defaults
		cfg = &copied
	}

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, errors.Wrap(err, "Loader", "Load", "load "+path)
		}
		cfg, err = l.mergeFromMap(cfg, raw)
		if err != nil {
			return nil, errors.Wrap(err, "Loader", "Load", "merge "+path)
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Defaults returns the configuration used when no layer sets a value.
func Defaults() *Config {
	fwd := notify.DefaultConfig()
	return &Config{
		Cache: cache.DefaultConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		Notify: NotifyConfig{
			Enabled:      false,
			URL:          "nats://localhost:4222",
			Subject:      fwd.Subject,
			Workers:      fwd.Workers,
			QueueSize:    fwd.QueueSize,
			MaxAttempts:  fwd.Backoff.MaxAttempts,
			InitialDelay: fwd.Backoff.InitialDelay,
			MaxDelay:     fwd.Backoff.MaxDelay,
			StopTimeout:  5 * time.Second,
		},
	}
}

// loadRaw reads a JSON or YAML file into a generic map.
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "loadRaw", "parse YAML")
		}
	default:
		if err := validateJSONDepth(data); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "loadRaw", "check JSON structure")
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "loadRaw", "parse JSON")
		}
	}

	if err := l.parseDurations(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// parseDurations converts duration strings to nanoseconds for json unmarshaling
func (l *Loader) parseDurations(data map[string]any) error {
	section, ok := data["notify"].(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range durationKeys {
		s, ok := section[key].(string)
		if !ok {
			continue
		}
		d, err := parseDurationWithDays(s)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "parseDurations", "parse notify."+key)
		}
		section[key] = d.Nanoseconds()
	}
	return nil
}

// parseDurationWithDays parses durations that may include days (e.g., "14d")
func parseDurationWithDays(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// mergeFromMap merges configuration from a raw map, only overriding fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	if override == nil {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, err
	}

	mergedJSON, err := json.Marshal(deepMergeMaps(baseMap, override))
	if err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "mergeFromMap", "encode merged layer")
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "mergeFromMap", "decode merged layer")
	}
	return &merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}

	return result
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	getenv := func(name string) (string, error) {
		key := l.envPrefix + "_" + name
		val := os.Getenv(key)
		return val, validateEnvVar(key, val)
	}
	atoi := func(name, val string) (int, error) {
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, errors.WrapInvalid(err, "Loader", "applyEnvOverrides",
				fmt.Sprintf("parse %s_%s", l.envPrefix, name))
		}
		return n, nil
	}

	if val, err := getenv("MAX_SIZE"); err != nil {
		return err
	} else if val != "" {
		n, err := atoi("MAX_SIZE", val)
		if err != nil {
			return err
		}
		cfg.Cache.MaxSize = n
	}
	if val, err := getenv("CACHE_NAME"); err != nil {
		return err
	} else if val != "" {
		cfg.Cache.Name = val
	}
	if val, err := getenv("LOG_LEVEL"); err != nil {
		return err
	} else if val != "" {
		cfg.Log.Level = val
	}
	if val, err := getenv("LOG_FORMAT"); err != nil {
		return err
	} else if val != "" {
		cfg.Log.Format = val
	}
	if val, err := getenv("METRICS_PORT"); err != nil {
		return err
	} else if val != "" {
		n, err := atoi("METRICS_PORT", val)
		if err != nil {
			return err
		}
		cfg.Metrics.Port = n
		cfg.Metrics.Enabled = n > 0
	}
	if val, err := getenv("NATS_URL"); err != nil {
		return err
	} else if val != "" {
		cfg.Notify.URL = val
		cfg.Notify.Enabled = true
	}
	if val, err := getenv("NATS_SUBJECT"); err != nil {
		return err
	} else if val != "" {
		cfg.Notify.Subject = val
	}

	return nil
}

// SaveToFile writes the configuration as JSON or YAML, chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = c.marshalYAML()
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.WrapInvalid(err, "Config", "SaveToFile", "encode config")
	}
	return safeWriteFile(path, data)
}

// marshalYAML goes through the JSON form so both formats share key names
// and durations are written as strings.
func (c *Config) marshalYAML() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if section, ok := raw["notify"].(map[string]any); ok {
		section["initial_delay"] = c.Notify.InitialDelay.String()
		section["max_delay"] = c.Notify.MaxDelay.String()
		section["stop_timeout"] = c.Notify.StopTimeout.String()
	}
	return yaml.Marshal(raw)
}
