package notify

import (
	"encoding/json"
	"time"

	"github.com/c360/genericcache/errors"
	"github.com/c360/genericcache/pkg/cache"
)

// Event is the wire form of one cache deletion.
type Event[V any] struct {
	Cache     string               `json:"cache"`
	Key       string               `json:"key"`
	Reason    cache.DeletionReason `json:"reason"`
	Value     V                    `json:"value"`
	Timestamp time.Time            `json:"timestamp"`
}

// Marshal encodes the event as JSON.
func (e Event[V]) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Event", "Marshal", "encode event for key "+e.Key)
	}
	return data, nil
}

// UnmarshalEvent decodes an event produced by Marshal.
func UnmarshalEvent[V any](data []byte) (Event[V], error) {
	var e Event[V]
	if err := json.Unmarshal(data, &e); err != nil {
		return e, errors.WrapInvalid(err, "Event", "Unmarshal", "decode event")
	}
	return e, nil
}
