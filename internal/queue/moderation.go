package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ModerationQueue is the Redis list carrying moderation tasks.
const ModerationQueue = "image_moderation_queue"

// ModerationTask is the queue payload: one attachment to classify.
type ModerationTask struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

// RedisQueue dispatches moderation tasks over a Redis list. It
// implements services.ModerationEnqueuer.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(cfg *config.Config) *RedisQueue {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) EnqueueModeration(ctx context.Context, attachmentID uuid.UUID) error {
	task := ModerationTask{
		AttachmentID: attachmentID,
		EnqueuedAt:   time.Now(),
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal moderation task: %w", err)
	}
	if err := q.rdb.LPush(ctx, ModerationQueue, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue moderation task: %w", err)
	}
	return nil
}

// Length returns the number of queued tasks, for health reporting.
func (q *RedisQueue) Length(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, ModerationQueue).Result()
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}
