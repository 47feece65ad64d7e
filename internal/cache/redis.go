package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache key prefixes
const (
	AnalyticsPrefix   = "analytics:"
	OTPThrottleKeyFmt = "otp:throttle:%s"
)

var client *redis.Client

// Init initializes the Redis connection. On failure the client stays nil
// and every helper degrades to a cache miss.
func Init(addr, password string, db int) error {
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// SetClient installs an existing client (nil disables caching).
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// Close releases the connection pool.
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// ============================================
// Generic Cache Functions
// ============================================

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// GetJSON decodes a cached JSON value into dst.
func GetJSON(ctx context.Context, key string, dst interface{}) bool {
	data, ok := GetCached(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes v as JSON and caches it.
func SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	SetCached(ctx, key, data, ttl)
}

// ============================================
// Cache Invalidation Functions
// ============================================

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iter.Err() == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateDeliveryCaches clears the analytics cache
// Called when: a delivery is recorded
func InvalidateDeliveryCaches(ctx context.Context) {
	InvalidatePattern(ctx, AnalyticsPrefix+"*")
}

// InvalidateDirectoryCaches clears caches derived from customers and routes
// Called when: schedule, status or route assignment changes
func InvalidateDirectoryCaches(ctx context.Context) {
	InvalidatePattern(ctx, AnalyticsPrefix+"*")
}

// ============================================
// Rate Limiting
// ============================================

// AllowOTPRequest counts an OTP request for mobile in a fixed window and
// reports whether it is within limit. The second result is the number of
// requests in the window so far. Without Redis every request is allowed
// and the count is 0.
func AllowOTPRequest(ctx context.Context, mobile string, limit int, window time.Duration) (bool, int, error) {
	if client == nil {
		return true, 0, nil
	}
	key := fmt.Sprintf(OTPThrottleKeyFmt, mobile)

	n, err := client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}
	return int(n) <= limit, int(n), nil
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
