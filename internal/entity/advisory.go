package entity

import "time"

// Advisory mirrors the `advisories` and `advisory_sections` PostgreSQL tables.
type Advisory struct {
	ID        int64
	Country   string
	Sections  EntityResult
	ScrapedAt time.Time
}
