package repository

import (
	"context"

	"github.com/user/advisory-service/internal/entity"
)

// FailedSectionRepository keeps track of sections whose last fetch degraded to an error.
type FailedSectionRepository interface {
	// SaveOrUpdate creates or updates a record for a failed section.
	SaveOrUpdate(ctx context.Context, failed *entity.FailedSection) error
	// FindByCountry lists the currently failing sections of a country.
	FindByCountry(ctx context.Context, country string) ([]*entity.FailedSection, error)
	// Delete removes a failed section record, typically after a successful fetch.
	Delete(ctx context.Context, country, section string) error
}
