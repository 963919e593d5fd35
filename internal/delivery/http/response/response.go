package response

import (
	"time"

	"github.com/user/advisory-service/internal/entity"
)

// ScrapeJob reports what happened to one submitted country.
type ScrapeJob struct {
	Country string `json:"country"`
	JobID   string `json:"job_id"`
	Status  string `json:"status"` // "queued" or "skipped"
	Reason  string `json:"reason,omitempty"`
}

type SubmitScrapeResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Jobs    []ScrapeJob `json:"jobs"`
}

// ScrapeStatusResponse is a DTO for scrape status, mirroring entity.ScrapeStatus
type ScrapeStatusResponse struct {
	Country        string     `json:"country"`
	CurrentStatus  string     `json:"current_status"` // "pending", "completed"
	LastScrapedAt  *time.Time `json:"last_scraped_at,omitempty"`
	FailedSections []string   `json:"failed_sections,omitempty"`
}

type AdvisoryResponse struct {
	Country   string              `json:"country"`
	ScrapedAt time.Time           `json:"scraped_at"`
	Sections  entity.EntityResult `json:"sections"`
}

type CountryRowsResponse struct {
	CountryID string       `json:"country_id"`
	Table     string       `json:"table"`
	Rows      []entity.Row `json:"rows"`
}
