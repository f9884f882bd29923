package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimiter_UnreachableRedisReportsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	limiter := NewFixedWindowLimiter(client, 5, time.Minute)
	ok, err := limiter.Allow(context.Background(), "login:10.0.0.1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestConnectRedis_EmptyAddrDisables(t *testing.T) {
	RDB = nil
	ConnectRedis("", "", 0)
	assert.Nil(t, RDB)
}
