package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/user/advisory-service/internal/repository"
)

const scrapeQueueKey = "advisory:queue"

// QueueRepoImpl provides a concrete implementation for the QueueRepository interface using Redis Lists.
type QueueRepoImpl struct {
	client *redis.Client
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client}
}

// Push adds a country to the left side of the Redis list.
func (r *QueueRepoImpl) Push(ctx context.Context, country string) error {
	return r.client.LPush(ctx, scrapeQueueKey, country).Err()
}

// Pop removes and returns a country from the right side of the Redis list.
func (r *QueueRepoImpl) Pop(ctx context.Context) (string, error) {
	country, err := r.client.RPop(ctx, scrapeQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrQueueEmpty
	}
	return country, err
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, scrapeQueueKey).Result()
}
