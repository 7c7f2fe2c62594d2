// Package state provides the small persistent key/value capability the
// engine uses to survive restarts: the operating mode and the last-applied
// match set.  Both a redis-backed implementation and an in-memory fallback
// satisfy the same interface; everything is best-effort by contract, so a
// read or parse failure means "absent", never a fatal condition.
package state

import (
	"context"
	"encoding/json"

	"github.com/colops/console/pkg/errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "state: key not found")

// Store is the persistence capability injected into the engine.  Values are
// opaque strings; callers own serialization.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key.  Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// GetJSON reads key and unmarshals it into dest.  Any failure (missing key,
// transport error, corrupt payload) yields false with no error, honouring
// the best-effort contract: persisted state that cannot be read is treated
// as if it never existed.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) bool {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false
	}
	return true
}

// SetJSON marshals value and stores it under key.  Serialization failures
// are reported; transport failures are the caller's to log and ignore.
func SetJSON(ctx context.Context, s Store, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "state: marshal failed")
	}
	return s.Set(ctx, key, string(raw))
}
