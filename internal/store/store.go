// Package store defines the key-value persistence layer for the coordination
// server.
//
// The Store interface abstracts the Redis-compatible primitives the domain
// services compose. Available implementations:
//
//   - redis: go-redis backed store for production use
//   - memory: in-memory store for development and testing
//
// To add a new implementation, create a subpackage that implements the Store
// interface and returns store.ErrNotFound for missing string and hash values.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a string key or hash field does not exist.
var ErrNotFound = errors.New("key not found")

// Store is the set of key-value operations the coordination services rely on.
// Every operation is individually atomic; the design never requires a
// multi-key transaction. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value of a string key. Returns ErrNotFound if the key
	// does not exist or has expired.
	Get(ctx context.Context, key string) (string, error)

	// Set writes a string key with no expiry.
	Set(ctx context.Context, key, value string) error

	// SetEx writes a string key that expires after ttl.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes keys of any type. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error

	// Exists reports whether a key of any type exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Keys returns all keys matching a glob pattern ("*" and "?" wildcards).
	Keys(ctx context.Context, pattern string) ([]string, error)

	// HGet returns one hash field. Returns ErrNotFound if the hash or the
	// field does not exist.
	HGet(ctx context.Context, key, field string) (string, error)

	// HSet writes one hash field, creating the hash if needed.
	HSet(ctx context.Context, key, field, value string) error

	// HDel removes hash fields. Missing fields are ignored.
	HDel(ctx context.Context, key string, fields ...string) error

	// HExists reports whether a hash field exists.
	HExists(ctx context.Context, key, field string) (bool, error)

	// HKeys returns all field names of a hash. An empty slice if the hash
	// does not exist.
	HKeys(ctx context.Context, key string) ([]string, error)

	// HGetAll returns the full field-to-value content of a hash. An empty
	// map if the hash does not exist.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// LPush prepends values to a list, creating it if needed.
	LPush(ctx context.Context, key string, values ...string) error

	// RPush appends values to a list, creating it if needed.
	RPush(ctx context.Context, key string, values ...string) error

	// LRange returns list elements between start and stop inclusive.
	// Negative indices count from the end (-1 is the last element).
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// LRem removes up to count elements equal to value, scanning from the
	// head. Returns the number removed.
	LRem(ctx context.Context, key string, count int64, value string) (int64, error)

	// LTrim trims a list to the elements between start and stop inclusive.
	LTrim(ctx context.Context, key string, start, stop int64) error

	// LLen returns the length of a list, 0 if it does not exist.
	LLen(ctx context.Context, key string) (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
