package config

// This file defines the Redis client constructor.  Redis carries the live
// seat-event feed (pub/sub) and caches room layouts; both are optional
// enhancements, so a failed connection returns nil and callers degrade
// gracefully: run without live updates and fetch layouts uncached.

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables:
//   REDIS_ADDR     – host:port of the Redis server (default "localhost:6379")
//   REDIS_PASSWORD – optional password
//   REDIS_DB       – database number (default 0)
// The returned client is nil when the server cannot be reached.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	})
	// Ping with a short timeout so a dead server fails startup wiring fast.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
