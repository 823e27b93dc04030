package cache

import (
	"fmt"
	"strings"

	"github.com/c360/genericcache/errors"
)

// DeletionReason tags why an entry left the cache.
type DeletionReason int

const (
	// ReasonManualDelete is reported for an explicit Delete call.
	ReasonManualDelete DeletionReason = 1
	// ReasonPurge is reported once per entry removed by Purge.
	ReasonPurge DeletionReason = 2
	// ReasonCapacityReached is reported for the entry evicted to make room.
	ReasonCapacityReached DeletionReason = 4
)

// String returns the string representation of DeletionReason
func (r DeletionReason) String() string {
	switch r {
	case ReasonManualDelete:
		return "manual_delete"
	case ReasonPurge:
		return "purge"
	case ReasonCapacityReached:
		return "capacity_reached"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r DeletionReason) MarshalText() ([]byte, error) {
	switch r {
	case ReasonManualDelete, ReasonPurge, ReasonCapacityReached:
		return []byte(r.String()), nil
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "DeletionReason", "MarshalText",
			fmt.Sprintf("encode reason %d", int(r)))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *DeletionReason) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "manual_delete":
		*r = ReasonManualDelete
	case "purge":
		*r = ReasonPurge
	case "capacity_reached":
		*r = ReasonCapacityReached
	default:
		return errors.WrapInvalid(errors.ErrInvalidData, "DeletionReason", "UnmarshalText",
			fmt.Sprintf("decode reason %q", string(text)))
	}
	return nil
}
