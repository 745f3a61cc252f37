package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Moderator runs the moderation task body. It must not propagate
// errors; everything is handled and logged inside.
type Moderator interface {
	Moderate(ctx context.Context, attachmentID uuid.UUID)
}

// Worker consumes moderation tasks from the Redis queue and hands them
// to the pipeline. Tasks are best-effort: a malformed payload or a
// panicking task is logged and dropped, never retried.
type Worker struct {
	rdb         *redis.Client
	moderator   Moderator
	taskTimeout time.Duration
}

func NewWorker(q *RedisQueue, moderator Moderator) *Worker {
	return &Worker{
		rdb:         q.rdb,
		moderator:   moderator,
		taskTimeout: 2 * time.Minute,
	}
}

// Run blocks consuming the queue until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("moderation worker started", "queue", ModerationQueue)
	for {
		res, err := w.rdb.BRPop(ctx, 5*time.Second, ModerationQueue).Result()
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("moderation worker stopped")
				return
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			slog.Error("failed to pop moderation task", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}
		w.handle(ctx, res[1])
	}
}

func (w *Worker) handle(ctx context.Context, payload string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("moderation task panicked", "panic", r)
		}
	}()

	var task ModerationTask
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		slog.Error("invalid moderation task payload", "error", err)
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()
	w.moderator.Moderate(taskCtx, task.AttachmentID)
}
