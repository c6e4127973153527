package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bestinclick/business/behavior"
	"bestinclick/business/recommend"
	"bestinclick/domain"
	"bestinclick/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	_ recommend.Cache           = (*RecommendationCache)(nil)
	_ behavior.CacheInvalidator = (*RecommendationCache)(nil)
)

// versionTTL outlives every cached list so a bumped version is never lost while
// entries of the previous version are still readable.
const versionTTL = 24 * time.Hour

type BreakerConfig struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, OpenTimeout: 30 * time.Second}
}

// RecommendationCache stores ranked lists under per-scope versioned keys:
//
//	reco:ver:<scope>                   current version, bumped by Invalidate
//	reco:<scope>:v<version>:<variant>  cached list
type RecommendationCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewRecommendationCache(client *redis.Client, cfg BreakerConfig) *RecommendationCache {
	settings := gobreaker.Settings{
		Name:        "recommendation-cache",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &RecommendationCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func versionKey(scope string) string {
	return "reco:ver:" + scope
}

func entryKey(scope string, version int64, variant string) string {
	return fmt.Sprintf("reco:%s:v%d:%s", scope, version, variant)
}

// Version returns the current generation of scope, 0 before the first invalidation.
func (c *RecommendationCache) Version(ctx context.Context, scope string) (int64, error) {
	var version int64
	_, err := c.breaker.Execute(func() ([]byte, error) {
		v, err := c.client.Get(ctx, versionKey(scope)).Int64()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get cache version: %w", err)
		}
		version = v
		return nil, nil
	})

	return version, err
}

func (c *RecommendationCache) Get(ctx context.Context, scope string, version int64, variant string) (domain.CachedRecommendations, bool, error) {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		raw, err := c.client.Get(ctx, entryKey(scope, version, variant)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get cached recommendations: %w", err)
		}
		return raw, nil
	})
	if err != nil {
		return domain.CachedRecommendations{}, false, err
	}
	if raw == nil {
		return domain.CachedRecommendations{}, false, nil
	}

	var v domain.CachedRecommendations
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.CachedRecommendations{}, false, fmt.Errorf("failed to unmarshal cached recommendations: %w", err)
	}

	return v, true, nil
}

// Set stores v under the version the caller read before computing it. A list
// computed before an invalidation therefore lands under a stale key and is never read.
func (c *RecommendationCache) Set(ctx context.Context, scope string, version int64, variant string, v domain.CachedRecommendations, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		if err := c.client.Set(ctx, entryKey(scope, version, variant), raw, ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to cache recommendations: %w", err)
		}
		return nil, nil
	})

	return err
}

// Invalidate makes every cached list of scope unreachable.
func (c *RecommendationCache) Invalidate(ctx context.Context, scope string) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, versionKey(scope))
			pipe.Expire(ctx, versionKey(scope), versionTTL)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to bump cache version: %w", err)
		}
		return nil, nil
	})

	return err
}
