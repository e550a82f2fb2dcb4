package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dhiren507/skillsync/internal/config"
	"github.com/Dhiren507/skillsync/internal/domain/models"
)

type RedisClient struct {
	*redis.Client
}

func NewRedisClient(cfg *config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{rdb}, nil
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

func (r *RedisClient) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	return r.Ping(ctx).Err()
}

// Generation locks give callers single-flight per (video, contentType,
// variant): two concurrent requests for the same key would otherwise both
// spend provider tokens on identical work.

func generationLockKey(videoID string, contentType models.ContentType, variant string) string {
	return fmt.Sprintf("genlock:%s:%s:%s", videoID, contentType, variant)
}

// AcquireGenerationLock returns true if this caller now owns the lock. The
// TTL bounds how long a crashed generation can block others.
func (r *RedisClient) AcquireGenerationLock(ctx context.Context, videoID string, contentType models.ContentType, variant string, ttl time.Duration) (bool, error) {
	ok, err := r.SetNX(ctx, generationLockKey(videoID, contentType, variant), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	return ok, nil
}

func (r *RedisClient) ReleaseGenerationLock(ctx context.Context, videoID string, contentType models.ContentType, variant string) error {
	if err := r.Del(ctx, generationLockKey(videoID, contentType, variant)).Err(); err != nil {
		return fmt.Errorf("failed to release generation lock: %w", err)
	}
	return nil
}
