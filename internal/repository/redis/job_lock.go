package redis

import (
	"context"
	"fmt"
	"time"

	"bestinclick/business/jobs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ jobs.Locker = (*JobLock)(nil)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type JobLock struct {
	client *redis.Client
}

func NewJobLock(client *redis.Client) *JobLock {
	return &JobLock{client: client}
}

func (l *JobLock) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

func (l *JobLock) Unlock(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
