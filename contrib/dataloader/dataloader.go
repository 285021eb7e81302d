// Package dataloader provides generic helpers for batch loading records by
// key: de-duplicating and chunking keys, and mapping batch results back
// to the keys that requested them.
//
// The engine loads every relation level with one query per chunk of
// parent keys:
//
//	keys := dataloader.Unique(ownerIDs)
//	users, err := dataloader.Batch(ctx, keys, 500, func(ctx context.Context, ids []int64) ([]query.Record, error) {
//	    return loadUsers(ctx, ids)
//	})
//	byID := dataloader.GroupByKey(users, func(r query.Record) int64 { return r.Int("id") })
package dataloader

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// BatchFunc loads the entities of a batch of keys.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, error)

// Unique returns keys without duplicates, keeping the first occurrence.
func Unique[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Chunk splits keys into consecutive slices of at most size elements.
// A size lower than one returns a single chunk.
func Chunk[K any](keys []K, size int) [][]K {
	if len(keys) == 0 {
		return nil
	}
	if size < 1 || len(keys) <= size {
		return [][]K{keys}
	}
	chunks := make([][]K, 0, (len(keys)+size-1)/size)
	for size < len(keys) {
		keys, chunks = keys[size:], append(chunks, keys[:size:size])
	}
	return append(chunks, keys)
}

// Batch calls fn once per chunk of keys and concatenates the results.
func Batch[K comparable, V any](ctx context.Context, keys []K, size int, fn BatchFunc[K, V]) ([]V, error) {
	var out []V
	for _, chunk := range Chunk(keys, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vs, err := fn(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

// OrderByKeys reorders entities to match the order of requested keys.
// Missing entities are represented as zero values with corresponding errors.
//
//	ordered, errs := OrderByKeys(ids, users, func(r query.Record) int64 { return r.Int("id") })
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeysNoError reorders entities to match the order of requested keys.
// Returns zero values for missing entities without errors.
// Use this when missing entities are acceptable (e.g., optional relationships).
func OrderByKeysNoError[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) []V {
	result, _ := OrderByKeys(keys, values, keyFn)
	return result
}

// GroupByKey groups entities by a key function, keeping their relative order.
// Useful for one-to-many relationships where multiple entities share the same foreign key.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys reorders grouped entities to match the order of requested keys.
// Returns a slice of slices where each inner slice contains entities for that key.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}
