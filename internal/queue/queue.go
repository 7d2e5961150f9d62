// Package queue buffers inbound emails in a Redis list so webhook
// ingestion and workflow processing scale independently. Consumers take
// a cross-process thread lock before each turn, which extends the
// orchestrator's in-process serialization across worker replicas.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/freightdesk/internal/pkg/distlock"
	"github.com/ignite/freightdesk/internal/pkg/logger"
	"github.com/ignite/freightdesk/internal/workflow"
)

const defaultKey = "freightdesk:inbound"

// Queue is a Redis-list email buffer.
type Queue struct {
	client *redis.Client
	key    string
}

// New builds a queue over the given Redis client. An empty key uses the
// default list name.
func New(client *redis.Client, key string) *Queue {
	if key == "" {
		key = defaultKey
	}
	return &Queue{client: client, key: key}
}

// Enqueue pushes one raw inbound email payload.
func (q *Queue) Enqueue(ctx context.Context, raw map[string]any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("queue: encoding payload: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("queue: enqueue: %w", err)
	}
	return nil
}

// Dequeue pops the oldest payload, blocking up to timeout. Returns
// (nil, nil) when the wait times out with an empty list.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (map[string]any, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue: dequeue: %w", err)
	}
	// BRPop returns [key, value].
	var raw map[string]any
	if err := json.Unmarshal([]byte(res[1]), &raw); err != nil {
		return nil, fmt.Errorf("queue: decoding payload: %w", err)
	}
	return raw, nil
}

// Len reports the number of buffered emails.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Processor runs one workflow turn. Satisfied by *workflow.Orchestrator.
type Processor interface {
	ProcessEmail(ctx context.Context, raw map[string]any) (*workflow.TurnResult, error)
}

// Consumer drains the queue into a Processor.
type Consumer struct {
	queue       *Queue
	processor   Processor
	lockTTL     time.Duration
	pollTimeout time.Duration
}

// NewConsumer builds a consumer.
func NewConsumer(q *Queue, p Processor) *Consumer {
	return &Consumer{
		queue:       q,
		processor:   p,
		lockTTL:     2 * time.Minute,
		pollTimeout: 5 * time.Second,
	}
}

// Run processes emails until the context is canceled. Each payload with
// a thread_id is processed under a Redis lock so replicas never run the
// same thread concurrently; a held lock requeues the payload.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		raw, err := c.queue.Dequeue(ctx, c.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("queue: dequeue failed", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}
		if raw == nil {
			continue
		}
		c.processOne(ctx, raw)
	}
}

func (c *Consumer) processOne(ctx context.Context, raw map[string]any) {
	threadID, _ := raw["thread_id"].(string)
	if threadID != "" {
		lock := distlock.NewRedisLock(c.queue.client, "thread:"+threadID, c.lockTTL)
		acquired, err := lock.Acquire(ctx)
		if err != nil || !acquired {
			// Another replica owns the thread; put the email back at the
			// tail so ordering within the thread is preserved.
			if requeueErr := c.requeueTail(ctx, raw); requeueErr != nil {
				logger.Error("queue: requeue failed, payload dropped",
					"thread_id", threadID, "error", requeueErr.Error())
			}
			return
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				logger.Warn("queue: lock release failed", "thread_id", threadID, "error", err.Error())
			}
		}()
	}

	turn, err := c.processor.ProcessEmail(ctx, raw)
	if err != nil {
		logger.Error("queue: turn failed", "thread_id", threadID, "error", err.Error())
		return
	}
	logger.Info("queue: turn processed",
		"workflow_id", turn.WorkflowID, "thread_id", turn.ThreadID, "status", string(turn.Status))
}

// requeueTail pushes the payload back to the consuming end of the list.
func (c *Consumer) requeueTail(ctx context.Context, raw map[string]any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return c.queue.client.RPush(ctx, c.queue.key, data).Err()
}
