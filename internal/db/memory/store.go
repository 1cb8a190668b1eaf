// Package memory is the in-process cache driver, backed by an expirable LRU.
package memory

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/prodsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultSize is the entry cap used when Config.Size is not set.
const DefaultSize = 4096

// Config holds in-process cache settings.
type Config struct {
	Size int           // max entries
	TTL  time.Duration // 0 = entries never expire (LRU eviction only)
}

// Store is a bounded LRU cache. Values are copied on the way in and out.
// The expirable LRU applies one TTL to every entry, so SetWithTTL ignores its ttl.
type Store struct {
	cache  *expirable.LRU[string, []byte]
	closed atomic.Bool
}

// NewStore creates an in-process store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Size < 0 {
		return nil, fmt.Errorf("size must not be negative, got %d", cfg.Size)
	}
	size := cfg.Size
	if size == 0 {
		size = DefaultSize
	}
	return &Store{cache: expirable.NewLRU[string, []byte](size, nil, cfg.TTL)}, nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	if s.closed.Load() {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Get retrieves a copy of the value stored at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrClosed}
	}
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return &db.Error{Op: db.OpSet, Err: db.ErrClosed}
	}
	s.cache.Add(key, append([]byte(nil), value...))
	return nil
}

// SetWithTTL stores a copy of value under the store-wide TTL.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, _ time.Duration) error {
	return s.Set(ctx, key, value)
}

// Del removes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int { return s.cache.Len() }

// Close purges the cache. Further operations fail with db.ErrClosed.
func (s *Store) Close() {
	s.closed.Store(true)
	s.cache.Purge()
}

// WaitForReady returns immediately: an in-process cache is ready on creation.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}
