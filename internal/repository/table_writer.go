package repository

import (
	"context"

	"github.com/user/advisory-service/internal/entity"
)

// TableWriter inserts one row into a named table of the country database.
type TableWriter interface {
	// Insert returns the rows the backend reports as written. An empty slice with a
	// nil error means the backend accepted the call but returned no data.
	Insert(ctx context.Context, table string, row entity.Row) ([]entity.Row, error)
}

// CountryReader reads the child rows of one country back from the country database.
type CountryReader interface {
	Children(ctx context.Context, table, countryID string) ([]entity.Row, error)
}
