package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conn is the shared Redis client. Nil when Redis is not configured; every
// helper degrades to a miss in that case so Mongo remains the source of truth.
var Conn *redis.Client

func Init(addr string) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Println("redis unavailable, caching disabled:", err)
		return
	}

	Conn = client
}

// GetJSON loads a cached value into dest. Returns false on miss, decode
// failure or when Redis is down.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if Conn == nil {
		return false
	}
	raw, err := Conn.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Println("cache decode error for", key, ":", err)
		return false
	}
	return true
}

// SetJSON stores a value with a TTL, best effort.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if Conn == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := Conn.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Println("cache write error for", key, ":", err)
	}
}

// Invalidate removes keys after a write, best effort.
func Invalidate(ctx context.Context, keys ...string) {
	if Conn == nil {
		return
	}
	if err := Conn.Del(ctx, keys...).Err(); err != nil {
		log.Println("cache invalidate error:", err)
	}
}
