package cache

import (
	"github.com/atanasg/ProteoVisualizer/errors"
)

// Cache is a string-keyed cache of values of type V.
type Cache[V any] interface {
	// Get returns the value for key and whether it was present and not expired.
	Get(key string) (V, bool)

	// Set stores value under key. It reports true when a new entry was created.
	Set(key string, value V) (bool, error)

	// Delete removes key. It reports whether the key existed.
	Delete(key string) (bool, error)

	// Clear removes every entry.
	Clear() error

	// Size is the number of stored entries, expired ones included until they are
	// looked up.
	Size() int

	// Keys lists keys, most recently used first.
	Keys() []string

	// Stats returns the cache statistics.
	Stats() *Statistics
}

// EvictCallback is called with every entry removed by eviction, expiry, Delete or Clear.
type EvictCallback[V any] func(key string, value V)

func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}
