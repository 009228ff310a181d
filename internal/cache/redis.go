package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportTTL bounds staleness if an invalidation is ever lost.
const ReportTTL = 24 * time.Hour

// RedisCache stores assembled project reports. Every project, segment or
// error write invalidates the project's key; callers treat any cache
// failure as a miss.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) GetReport(ctx context.Context, projectID int64) ([]byte, error) {
	return c.client.Get(ctx, reportKey(projectID)).Bytes()
}

func (c *RedisCache) SetReport(ctx context.Context, projectID int64, value []byte) error {
	return c.client.Set(ctx, reportKey(projectID), value, ReportTTL).Err()
}

func (c *RedisCache) InvalidateReport(ctx context.Context, projectID int64) error {
	return c.client.Del(ctx, reportKey(projectID)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func reportKey(projectID int64) string {
	return fmt.Sprintf("report:%d", projectID)
}
