// Package storage provides the small key/value contract used for search
// history and the latest-result cache, with memory, SQLite and Redis backends.
package storage

import (
	"time"

	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"
)

// Storage is the subset of fiber.Storage this application relies on.
// Get returns nil, nil for a missing or expired key.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
	Close() error
}

// NewRedis connects to Redis at url. It panics if the server is unreachable,
// matching gofiber/storage behaviour.
func NewRedis(url string) *redis.Storage {
	return redis.New(redis.Config{URL: url})
}

// Memory is the in-process Storage from gofiber/storage. Expiry has one
// second resolution.
type Memory = memory.Storage

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return memory.New()
}
