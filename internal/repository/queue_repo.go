package repository

import (
	"context"
	"errors"
)

// ErrQueueEmpty is returned by Pop when nothing is waiting.
var ErrQueueEmpty = errors.New("queue is empty")

// QueueRepository defines the interface for a FIFO queue of countries to be scraped.
type QueueRepository interface {
	// Push adds a country to the end of the queue.
	Push(ctx context.Context, country string) error
	// Pop removes and returns a country from the front of the queue, or ErrQueueEmpty.
	Pop(ctx context.Context) (string, error)
	// Size returns the current number of items in the queue.
	Size(ctx context.Context) (int64, error)
}
