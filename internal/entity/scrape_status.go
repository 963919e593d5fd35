package entity

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusNotFound  = "not_found"
)

type ScrapeStatus struct {
	Country        string
	CurrentStatus  string // "pending", "completed", "not_found"
	LastScrapedAt  *time.Time
	FailedSections []string
}
