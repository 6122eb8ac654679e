package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	redisclient "github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/redis"
)

// syncQueueKey is the Redis list backing the durable sync queue.
const syncQueueKey = "appointments:sync:queue"

// RedisSyncQueue implements SyncQueue on a Redis list. The webhook boundary
// enqueues one job per change notification; the sync worker drains them in
// order. Durability here means a crashed worker leaves unprocessed jobs in
// Redis rather than losing them with the process.
type RedisSyncQueue struct {
	client *redisclient.Client
}

// NewRedisSyncQueue creates a Redis-list-backed sync queue.
func NewRedisSyncQueue(client *redisclient.Client) providers.SyncQueue {
	return &RedisSyncQueue{client: client}
}

// Enqueue appends a change notification to the queue.
func (q *RedisSyncQueue) Enqueue(ctx context.Context, event *entities.ChangeNotification) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change notification: %w", err)
	}
	if err := q.client.Client().LPush(ctx, syncQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue change notification: %w", err)
	}
	return nil
}

// Dequeue pops the oldest change notification, blocking up to timeout.
// Returns (nil, nil) when the timeout elapses with an empty queue.
func (q *RedisSyncQueue) Dequeue(ctx context.Context, timeout time.Duration) (*entities.ChangeNotification, error) {
	res, err := q.client.Client().BRPop(ctx, timeout, syncQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue change notification: %w", err)
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(res))
	}

	var event entities.ChangeNotification
	if err := json.Unmarshal([]byte(res[1]), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal change notification: %w", err)
	}
	return &event, nil
}
