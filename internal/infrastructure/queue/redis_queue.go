package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const prefetchQueueKey = "transcript_prefetch_queue"

type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(redisClient *redis.Client) *RedisQueue {
	return &RedisQueue{client: redisClient}
}

// TranscriptPrefetchJob asks the worker to fetch and persist the caption
// track for one imported video, so the first study-aid generation on it
// doesn't pay the fetch latency.
type TranscriptPrefetchJob struct {
	PlaylistID string `json:"playlist_id"`
	VideoID    string `json:"video_id"`
	YouTubeID  string `json:"youtube_id"`
	UserID     int64  `json:"user_id"`
}

func (q *RedisQueue) EnqueuePrefetch(ctx context.Context, job TranscriptPrefetchJob) error {
	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.LPush(ctx, prefetchQueueKey, jobData).Err()
}

func (q *RedisQueue) DequeuePrefetch(ctx context.Context) (*TranscriptPrefetchJob, error) {
	result, err := q.client.BRPop(ctx, 30*time.Second, prefetchQueueKey).Result()
	if err != nil {
		return nil, err
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid queue result")
	}

	var job TranscriptPrefetchJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}
