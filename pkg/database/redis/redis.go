package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"bestinclick/pkg/config"
	"bestinclick/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	connectAttempts = 3
	connectBackoff  = time.Second
)

// NewRedisClient opens the connection pool used by the recommendation cache and
// the batch job locks. Timeouts are short: a slow cache must not hold up a request.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		MaxRetries:   1,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return client, nil
		}

		logger.Warn("Redis not reachable yet", "attempt", attempt, "addr", client.Options().Addr, "error", err)
		if attempt == connectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("context error: %w", ctx.Err())
		case <-time.After(connectBackoff * time.Duration(attempt)):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", connectAttempts, err)
}

// CloseRedisClient closes the Redis connection
func CloseRedisClient(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}

	return nil
}
