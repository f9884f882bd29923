package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// ConnectRedis leaves RDB nil when addr is empty, which disables rate limiting.
func ConnectRedis(addr, password string, db int) {
	if addr == "" {
		log.Println("WARN: REDIS_ADDR not set, rate limiting disabled")
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("WARN: could not connect to Redis at %s, rate limiting disabled: %v", addr, err)
		client.Close()
		return
	}
	RDB = client
	log.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		log.Println("Redis connection closed.")
	}
}

// FixedWindowLimiter allows up to max hits per key in each window.
type FixedWindowLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	prefix string
}

func NewFixedWindowLimiter(client *redis.Client, max int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client, max: max, window: window, prefix: "ratelimit:"}
}

// Allow counts one hit for key and reports whether it is within the limit.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(l.max), nil
}
