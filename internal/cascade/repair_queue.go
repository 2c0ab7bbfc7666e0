package cascade

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RepairQueue holds department ids whose employee count needs recomputation.
// Pushing an id that is already queued is a no-op.
type RepairQueue interface {
	Push(ctx context.Context, departmentIDs ...string) error
	Pop(ctx context.Context, max int) ([]string, error)
}

type redisRepairQueue struct {
	client *redis.Client
	key    string
}

// NewRedisRepairQueue keeps the queue in a Redis set.
func NewRedisRepairQueue(client *redis.Client, key string) RepairQueue {
	return &redisRepairQueue{client: client, key: key}
}

func (q *redisRepairQueue) Push(ctx context.Context, departmentIDs ...string) error {
	if len(departmentIDs) == 0 {
		return nil
	}
	members := make([]any, 0, len(departmentIDs))
	for _, id := range departmentIDs {
		members = append(members, id)
	}
	return q.client.SAdd(ctx, q.key, members...).Err()
}

func (q *redisRepairQueue) Pop(ctx context.Context, max int) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}
	ids, err := q.client.SPopN(ctx, q.key, int64(max)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return ids, err
}

type memoryRepairQueue struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemoryRepairQueue keeps the queue in process memory.
func NewMemoryRepairQueue() RepairQueue {
	return &memoryRepairQueue{ids: make(map[string]struct{})}
}

func (q *memoryRepairQueue) Push(ctx context.Context, departmentIDs ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range departmentIDs {
		q.ids[id] = struct{}{}
	}
	return nil
}

func (q *memoryRepairQueue) Pop(ctx context.Context, max int) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, max)
	for id := range q.ids {
		if len(out) >= max {
			break
		}
		out = append(out, id)
		delete(q.ids, id)
	}
	return out, nil
}
