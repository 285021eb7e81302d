package repairdb

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is the interface for caching query results.
// Implementations live in contrib/cache (in-memory and Redis).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies a cached read.
type CacheKey struct {
	Model  string
	Action string
	// Args is the msgpack digest of the request arguments.
	Args string
}

// String returns the string representation of the cache key.
// All keys of a model share the CachePrefix(model) prefix.
func (k CacheKey) String() string {
	return CachePrefix(k.Model) + k.Action + ":" + k.Args
}

// CachePrefix returns the key prefix shared by every cached read of model.
func CachePrefix(model string) string {
	return "repairdb:" + model + ":"
}

// NewCacheKey builds a key from the request arguments. Arguments are
// encoded with msgpack, map keys sorted, so that structurally equal
// requests share a key.
func NewCacheKey(model, action string, args any) (CacheKey, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(args); err != nil {
		return CacheKey{}, fmt.Errorf("repairdb: encode cache key: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return CacheKey{Model: model, Action: action, Args: hex.EncodeToString(sum[:16])}, nil
}

// EncodeCacheValue encodes a value for storage in a Cache.
func EncodeCacheValue(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// DecodeCacheValue decodes a value previously encoded with EncodeCacheValue.
func DecodeCacheValue(b []byte, v any) error {
	return msgpack.Unmarshal(b, v)
}
