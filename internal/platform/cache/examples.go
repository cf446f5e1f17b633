package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ExampleCache keeps a problem's ordered example blocks in Redis so the
// submission pipeline does not hit Postgres on every judge call. Redis
// failures degrade to cache misses; callers always fall through to the store.
type ExampleCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewExampleCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ExampleCache {
	return &ExampleCache{rdb: rdb, ttl: ttl, logger: logger}
}

func exampleKey(problemID string) string {
	return "problem:examples:" + problemID
}

func (c *ExampleCache) Get(ctx context.Context, problemID string) ([]string, bool) {
	raw, err := c.rdb.Get(ctx, exampleKey(problemID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("example cache read failed", zap.String("problem_id", problemID), zap.Error(err))
		}
		return nil, false
	}
	var examples []string
	if err := json.Unmarshal(raw, &examples); err != nil {
		c.logger.Warn("example cache entry corrupt, dropping", zap.String("problem_id", problemID), zap.Error(err))
		c.rdb.Del(ctx, exampleKey(problemID))
		return nil, false
	}
	return examples, true
}

func (c *ExampleCache) Set(ctx context.Context, problemID string, examples []string) {
	raw, err := json.Marshal(examples)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, exampleKey(problemID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("example cache write failed", zap.String("problem_id", problemID), zap.Error(err))
	}
}

func (c *ExampleCache) Invalidate(ctx context.Context, problemID string) {
	if err := c.rdb.Del(ctx, exampleKey(problemID)).Err(); err != nil {
		c.logger.Warn("example cache invalidation failed", zap.String("problem_id", problemID), zap.Error(err))
	}
}
