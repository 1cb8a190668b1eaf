// Package db defines the storage contracts shared by the cache drivers
// (redis/valkey via rueidis, badger, in-process LRU).
package db

import (
	"context"
	"time"
)

// Store is the key-value facade every cache driver implements.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations. Set applies the driver's
// configured TTL; SetWithTTL overrides it for one key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Driver names accepted in cache.driver.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverBadger = "badger"
)
