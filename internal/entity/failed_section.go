package entity

import "time"

// FailedSection mirrors the `failed_sections` PostgreSQL table schema.
type FailedSection struct {
	ID                   int64
	Country              string
	Section              string
	FailureReason        string
	LastAttemptTimestamp time.Time
	AttemptCount         int
}
