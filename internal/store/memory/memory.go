// Package memory provides an in-memory implementation of the coordination
// store.
//
// It is suitable for tests and single-process development runs where
// persistence across restarts is not required. FastForward shifts the
// store's clock so TTL expiry can be exercised without real waiting.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/splitmind/a2amcp/internal/store"
)

type stringEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// Store is an in-memory implementation of store.Store. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	strings map[string]stringEntry
	hashes  map[string]map[string]string
	lists   map[string][]string
	skew    time.Duration
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		strings: make(map[string]stringEntry),
		hashes:  make(map[string]map[string]string),
		lists:   make(map[string][]string),
	}
}

// FastForward advances the store's notion of now by d, expiring any string
// keys whose TTL falls inside the window. For tests.
func (s *Store) FastForward(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skew += d
}

func (s *Store) now() time.Time {
	return time.Now().Add(s.skew)
}

// expired reports whether the entry is past its TTL. Caller holds the lock.
func (s *Store) expired(e stringEntry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Get returns the value of a string key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctxErr(ctx); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.strings[key]
	if !ok {
		return "", store.ErrNotFound
	}
	if s.expired(e) {
		delete(s.strings, key)
		return "", store.ErrNotFound
	}
	return e.value, nil
}

// Set writes a string key with no expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = stringEntry{value: value}
	return nil
}

// SetEx writes a string key that expires after ttl.
func (s *Store) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = stringEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// Del removes keys of any type.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.strings, key)
		delete(s.hashes, key)
		delete(s.lists, key)
	}
	return nil
}

// Exists reports whether a key of any type exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.strings[key]; ok {
		if s.expired(e) {
			delete(s.strings, key)
		} else {
			return true, nil
		}
	}
	if _, ok := s.hashes[key]; ok {
		return true, nil
	}
	if _, ok := s.lists[key]; ok {
		return true, nil
	}
	return false, nil
}

// Keys returns all keys matching a glob pattern.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k, e := range s.strings {
		if s.expired(e) {
			delete(s.strings, k)
			continue
		}
		if globMatch(pattern, k) {
			out = append(out, k)
		}
	}
	for k := range s.hashes {
		if globMatch(pattern, k) {
			out = append(out, k)
		}
	}
	for k := range s.lists {
		if globMatch(pattern, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// HGet returns one hash field.
func (s *Store) HGet(ctx context.Context, key, field string) (string, error) {
	if err := ctxErr(ctx); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hashes[key]
	if !ok {
		return "", store.ErrNotFound
	}
	v, ok := h[field]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

// HSet writes one hash field.
func (s *Store) HSet(ctx context.Context, key, field, value string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	h[field] = value
	return nil
}

// HDel removes hash fields. The hash itself is removed when its last field
// goes, so Exists matches Redis behavior.
func (s *Store) HDel(ctx context.Context, key string, fields ...string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		return nil
	}
	for _, f := range fields {
		delete(h, f)
	}
	if len(h) == 0 {
		delete(s.hashes, key)
	}
	return nil
}

// HExists reports whether a hash field exists.
func (s *Store) HExists(ctx context.Context, key, field string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hashes[key]
	if !ok {
		return false, nil
	}
	_, ok = h[field]
	return ok, nil
}

// HKeys returns all field names of a hash.
func (s *Store) HKeys(ctx context.Context, key string) ([]string, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.hashes[key]
	out := make([]string, 0, len(h))
	for f := range h {
		out = append(out, f)
	}
	return out, nil
}

// HGetAll returns the full content of a hash.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.hashes[key]
	out := make(map[string]string, len(h))
	for f, v := range h {
		out[f] = v
	}
	return out, nil
}

// LPush prepends values to a list. Values are prepended one at a time, so
// LPush(k, "a", "b") leaves "b" at the head, matching Redis.
func (s *Store) LPush(ctx context.Context, key string, values ...string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lists[key]
	for _, v := range values {
		l = append([]string{v}, l...)
	}
	s.lists[key] = l
	return nil
}

// RPush appends values to a list.
func (s *Store) RPush(ctx context.Context, key string, values ...string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append(s.lists[key], values...)
	return nil
}

// LRange returns list elements between start and stop inclusive.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.lists[key]
	n := int64(len(l))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, l[start:stop+1])
	return out, nil
}

// LRem removes up to count elements equal to value from the head.
func (s *Store) LRem(ctx context.Context, key string, count int64, value string) (int64, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lists[key]
	var kept []string
	var removed int64
	for _, v := range l {
		if v == value && (count == 0 || removed < count) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		delete(s.lists, key)
	} else {
		s.lists[key] = kept
	}
	return removed, nil
}

// LTrim trims a list to the elements between start and stop inclusive.
func (s *Store) LTrim(ctx context.Context, key string, start, stop int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lists[key]
	n := int64(len(l))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		delete(s.lists, key)
		return nil
	}
	trimmed := make([]string, stop-start+1)
	copy(trimmed, l[start:stop+1])
	s.lists[key] = trimmed
	return nil
}

// LLen returns the length of a list.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.lists[key])), nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctxErr(ctx)
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// globMatch reports whether s matches a Redis-style glob pattern where "*"
// matches any run of characters (including separators) and "?" matches one.
func globMatch(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			pattern = pattern[1:]
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatch(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		default:
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		}
	}
	return len(s) == 0
}
