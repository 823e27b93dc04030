package cache

import (
	"fmt"

	"github.com/c360/genericcache/errors"
)

// Config contains configuration for cache creation. It is copied into the
// cache at construction and cannot change afterwards.
type Config struct {
	// MaxSize is the maximum number of entries held before LRU eviction.
	MaxSize int `json:"max_size" yaml:"max_size" schema:"editable,type:int,description:Maximum number of cache entries,min:1"`

	// Name labels log records and metrics for this cache instance.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize: 100,
		Name:    "default",
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.MaxSize <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("max_size must be positive, got %d", c.MaxSize))
	}
	return nil
}
