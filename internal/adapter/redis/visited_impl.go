package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/advisory-service/pkg/utils"
)

const visitedKeyPrefix = "advisory:visited:"

// VisitedRepoImpl provides a concrete implementation for the VisitedRepository interface using Redis.
type VisitedRepoImpl struct {
	client *redis.Client
}

// NewVisitedRepo creates a new instance of VisitedRepoImpl.
func NewVisitedRepo(client *redis.Client) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client}
}

// generateKey hashes the country name so accents and spaces never end up in a key.
func (r *VisitedRepoImpl) generateKey(country string) string {
	return visitedKeyPrefix + utils.HashKey(country)
}

// MarkVisited stores the submission time under the key with an expiry. SETEX is atomic.
func (r *VisitedRepoImpl) MarkVisited(ctx context.Context, country string, at time.Time, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(country), strconv.FormatInt(at.UnixNano(), 10), expiry).Err()
}

// SubmittedAt reads the submission time back. A value that is not a timestamp yields the zero time.
func (r *VisitedRepoImpl) SubmittedAt(ctx context.Context, country string) (time.Time, bool, error) {
	val, err := r.client.Get(ctx, r.generateKey(country)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, true, nil
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

// IsVisited checks for the existence of the country's key.
func (r *VisitedRepoImpl) IsVisited(ctx context.Context, country string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(country)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// RemoveVisited removes a country from the visited set, used for forced scrapes.
func (r *VisitedRepoImpl) RemoveVisited(ctx context.Context, country string) error {
	return r.client.Del(ctx, r.generateKey(country)).Err()
}
