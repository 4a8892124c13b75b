// Package cache stores derived byte artifacts, such as rendered SVG, keyed
// by the content they were derived from.
//
// Two implementations are provided: [FileCache] for the CLI, which keeps
// entries under the user cache directory, and [NullCache], which never
// stores anything. [Scoped] prefixes the keys of another cache so several
// artifact kinds can share one directory.
//
// Keys are built with [Key] from a prefix and any JSON-encodable parts:
//
//	key := cache.Key("svg", cache.Hash(doc), opts)
//
// Cache hits, misses and writes are reported to [observability.Cache].
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with optional expiry. A miss is not an error:
// Get returns ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key generates a cache key by hashing the parts.
// The key format is: prefix:sha256(json(parts)).
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
