package repository

import (
	"context"
	"time"
)

// VisitedRepository remembers recently submitted countries so repeated requests are not queued twice.
type VisitedRepository interface {
	// MarkVisited records when a country was submitted, kept for expiry.
	MarkVisited(ctx context.Context, country string, at time.Time, expiry time.Duration) error
	// IsVisited checks if a country has been submitted recently.
	IsVisited(ctx context.Context, country string) (bool, error)
	// SubmittedAt returns the last submission time, and false when none is remembered.
	SubmittedAt(ctx context.Context, country string) (time.Time, bool, error)
	// RemoveVisited removes a country from the submitted set, used for force requests.
	RemoveVisited(ctx context.Context, country string) error
}
