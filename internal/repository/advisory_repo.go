package repository

import (
	"context"
	"errors"

	"github.com/user/advisory-service/internal/entity"
)

// ErrNotFound is returned when no stored record matches the lookup.
var ErrNotFound = errors.New("not found")

// AdvisoryRepository defines the interface for storing and retrieving scraped advisories.
type AdvisoryRepository interface {
	// Save stores the sections scraped for a country, replacing any previous scrape.
	Save(ctx context.Context, advisory *entity.Advisory) error
	// FindByCountry retrieves the latest advisory for a country, or ErrNotFound.
	FindByCountry(ctx context.Context, country string) (*entity.Advisory, error)
}
