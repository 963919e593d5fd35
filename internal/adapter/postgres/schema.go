package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// CountrySchema holds the country tables written by the relay.
//
//go:embed country_schema.sql
var CountrySchema string

// EnsureSchema creates the scrape service tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// EnsureCountrySchema creates the country tables when they do not exist yet.
func EnsureCountrySchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, CountrySchema); err != nil {
		return fmt.Errorf("apply country schema: %w", err)
	}
	return nil
}
