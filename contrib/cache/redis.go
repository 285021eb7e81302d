package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/repairtrack/repairdb"
)

// Redis stores cached reads in Redis under a namespace prefix.
type Redis struct {
	rdb       redis.UniversalClient
	namespace string
	scanCount int64
}

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithNamespace prefixes every key, so several databases can share one
// Redis instance. Clear only removes keys of the namespace.
func WithNamespace(ns string) RedisOption {
	return func(r *Redis) { r.namespace = ns }
}

// WithScanCount sets the COUNT hint used when scanning for prefixes.
func WithScanCount(n int64) RedisOption {
	return func(r *Redis) { r.scanCount = n }
}

// NewRedis wraps a go-redis client. The caller owns the client.
func NewRedis(rdb redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, scanCount: 100}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repairdb.Cache = (*Redis)(nil)

func (r *Redis) key(k string) string { return r.namespace + k }

// Get returns nil, nil when the key does not exist.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: redis get: %w", err)
	}
	return b, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("cache: redis del: %w", err)
	}
	return nil
}

// DeletePrefix scans the keyspace with SCAN MATCH and deletes in batches.
func (r *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	return r.deleteMatch(ctx, escapeGlob(r.key(prefix))+"*")
}

// Clear removes the namespace's keys, or flushes the database when no
// namespace is set.
func (r *Redis) Clear(ctx context.Context) error {
	if r.namespace == "" {
		if err := r.rdb.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("cache: redis flush: %w", err)
		}
		return nil
	}
	return r.deleteMatch(ctx, escapeGlob(r.namespace)+"*")
}

func (r *Redis) deleteMatch(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, pattern, r.scanCount).Result()
		if err != nil {
			return fmt.Errorf("cache: redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache: redis del: %w", err)
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\', c)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
