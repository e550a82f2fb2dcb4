package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// StreamingRedisQueue fans generation progress events out over redis pub/sub
// so websocket connections on any API instance see them.
type StreamingRedisQueue struct {
	*RedisQueue
	log           *logrus.Logger
	subscriptions map[string]*subscription
	mutex         sync.RWMutex
}

type subscription struct {
	sub     *models.StreamSubscription
	pubsub  io.Closer
	videoID string
}

func NewStreamingRedisQueue(redisClient *redis.Client, log *logrus.Logger) *StreamingRedisQueue {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StreamingRedisQueue{
		RedisQueue:    NewRedisQueue(redisClient),
		log:           log,
		subscriptions: make(map[string]*subscription),
	}
}

func videoChannel(videoID string) string {
	return fmt.Sprintf("video_stream:%s", videoID)
}

// PublishStreamingUpdate stamps the message with an ID, timestamp, and a
// per-video monotonic sequence, then publishes it.
func (q *StreamingRedisQueue) PublishStreamingUpdate(ctx context.Context, msg *models.StreamMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	seqKey := fmt.Sprintf("video_stream_seq:%s", msg.VideoID)
	seq, err := q.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return fmt.Errorf("failed to increment sequence: %w", err)
	}
	msg.Sequence = seq

	msgData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal streaming message: %w", err)
	}

	return q.client.Publish(ctx, videoChannel(msg.VideoID), msgData).Err()
}

// Publish satisfies the orchestrator's ProgressSink. It never blocks the
// pipeline: publish failures are logged and dropped.
func (q *StreamingRedisQueue) Publish(ctx context.Context, msg *models.StreamMessage) {
	if err := q.PublishStreamingUpdate(ctx, msg); err != nil {
		q.log.WithError(err).WithField("video_id", msg.VideoID).Warn("failed to publish generation progress")
	}
}

// Subscribe opens a redis subscription for one video's stream and pumps
// decoded messages into the returned subscription's channel until
// Unsubscribe.
func (q *StreamingRedisQueue) Subscribe(ctx context.Context, videoID string, userID int64) (*models.StreamSubscription, error) {
	pubsub := q.client.Subscribe(ctx, videoChannel(videoID))

	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to video stream: %w", err)
	}

	sub := &models.StreamSubscription{
		ID:        uuid.New().String(),
		VideoID:   videoID,
		UserID:    userID,
		Channel:   make(chan *models.StreamMessage, 64),
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	q.mutex.Lock()
	q.subscriptions[sub.ID] = &subscription{sub: sub, pubsub: pubsub, videoID: videoID}
	q.mutex.Unlock()

	go q.pump(pubsub, sub)

	return sub, nil
}

func (q *StreamingRedisQueue) pump(pubsub *redis.PubSub, sub *models.StreamSubscription) {
	defer close(sub.Channel)

	for raw := range pubsub.Channel() {
		var msg models.StreamMessage
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			q.log.WithError(err).Warn("dropping malformed stream message")
			continue
		}

		select {
		case sub.Channel <- &msg:
		default:
			// Slow consumer; drop rather than stall the pump.
		}
	}
}

func (q *StreamingRedisQueue) Unsubscribe(subscriptionID string) error {
	q.mutex.Lock()
	entry, ok := q.subscriptions[subscriptionID]
	if ok {
		delete(q.subscriptions, subscriptionID)
	}
	q.mutex.Unlock()

	if !ok {
		return fmt.Errorf("subscription %s not found", subscriptionID)
	}
	return entry.pubsub.Close()
}

// Touch marks a subscription as still watched. The websocket layer calls it
// on client activity so housekeeping never reaps a live viewer.
func (q *StreamingRedisQueue) Touch(subscriptionID string) {
	q.mutex.Lock()
	if entry, ok := q.subscriptions[subscriptionID]; ok {
		entry.sub.LastSeen = time.Now()
	}
	q.mutex.Unlock()
}

// CleanupSubscriptions drops subscriptions that have not been touched for ten
// minutes, catching any whose websocket died without unsubscribing. Called
// from the websocket hub's housekeeping ticker.
func (q *StreamingRedisQueue) CleanupSubscriptions() {
	cutoff := time.Now().Add(-10 * time.Minute)

	q.mutex.Lock()
	defer q.mutex.Unlock()

	for id, entry := range q.subscriptions {
		if entry.sub.LastSeen.Before(cutoff) {
			entry.pubsub.Close()
			delete(q.subscriptions, id)
			q.log.WithField("subscription_id", id).Info("cleaned up stale stream subscription")
		}
	}
}
