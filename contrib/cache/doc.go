// Package cache provides repairdb.Cache implementations for the engine's
// read cache: an in-process store for single instances and tests, and a
// Redis-backed store shared by several processes.
//
//	c := cache.NewRedis(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//	db, err := client.Open(ctx, client.WithCache(c, time.Minute))
package cache
