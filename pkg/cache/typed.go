package cache

import (
	"fmt"
	"reflect"

	"github.com/c360/genericcache/errors"
)

// GetAs reads key from a heterogeneous cache as a T.
//
// A hit of the right type promotes key exactly like TryGet. A value of another
// type leaves the cache untouched and returns an error wrapping
// errors.ErrTypeMismatch. A miss returns (zero, false, nil).
func GetAs[T any](c *Cache[any], key string) (T, bool, error) {
	var zero T

	raw, found, matched := c.tryGetMatching(key, func(v any) bool {
		_, ok := convert[T](v)
		return ok
	})
	if !found {
		return zero, false, nil
	}
	if !matched {
		return zero, false, errors.WrapInvalid(
			fmt.Errorf("%w: key %q holds %T, want %s", errors.ErrTypeMismatch, key, raw, typeName[T]()),
			"Cache", "GetAs", "convert value")
	}

	value, _ := convert[T](raw)
	return value, true, nil
}

// SubscribeDeleteAs registers a deletion callback that receives payloads as T.
// A deletion whose payload is not a T skips the callback and is reported as a
// subscriber failure.
func SubscribeDeleteAs[T any](c *Cache[any], callback func(key string, reason DeletionReason, value T)) string {
	return c.subscribe(func(key string, reason DeletionReason, value any) error {
		typed, ok := convert[T](value)
		if !ok {
			return errors.WrapInvalid(
				fmt.Errorf("%w: key %q holds %T, want %s", errors.ErrTypeMismatch, key, value, typeName[T]()),
				"Cache", "SubscribeDeleteAs", "convert value")
		}
		callback(key, reason, typed)
		return nil
	})
}

// convert asserts v to T. A nil payload converts to the zero T when T can
// hold nil.
func convert[T any](v any) (T, bool) {
	if typed, ok := v.(T); ok {
		return typed, true
	}
	var zero T
	if v == nil && nilable(reflect.TypeFor[T]()) {
		return zero, true
	}
	return zero, false
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
