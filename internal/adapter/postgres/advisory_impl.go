package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/internal/repository"
)

// AdvisoryRepoImpl provides a concrete implementation for the AdvisoryRepository interface using PostgreSQL.
type AdvisoryRepoImpl struct {
	db *pgxpool.Pool
}

// NewAdvisoryRepo creates a new instance of AdvisoryRepoImpl.
func NewAdvisoryRepo(db *pgxpool.Pool) *AdvisoryRepoImpl {
	return &AdvisoryRepoImpl{db: db}
}

// Save upserts the advisory and replaces its sections within a single transaction.
func (r *AdvisoryRepoImpl) Save(ctx context.Context, advisory *entity.Advisory) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO advisories (country, scraped_at)
		 VALUES ($1, $2)
		 ON CONFLICT (country) DO UPDATE SET scraped_at = EXCLUDED.scraped_at
		 RETURNING id`,
		advisory.Country, advisory.ScrapedAt,
	).Scan(&advisory.ID)
	if err != nil {
		return fmt.Errorf("upsert advisory: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM advisory_sections WHERE advisory_id = $1`, advisory.ID); err != nil {
		return fmt.Errorf("clear sections: %w", err)
	}

	batch := &pgx.Batch{}
	for i, section := range advisory.Sections.Sections() {
		result, _ := advisory.Sections.Get(section)
		batch.Queue(`INSERT INTO advisory_sections (advisory_id, position, section, status, text, detail)
		             VALUES ($1, $2, $3, $4, $5, $6)`,
			advisory.ID, i, section, string(result.Status), result.Text, result.Detail)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert sections: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// FindByCountry retrieves the stored advisory for a country with its sections in scrape order.
func (r *AdvisoryRepoImpl) FindByCountry(ctx context.Context, country string) (*entity.Advisory, error) {
	var advisory entity.Advisory
	err := r.db.QueryRow(ctx,
		`SELECT id, country, scraped_at FROM advisories WHERE country = $1`,
		country,
	).Scan(&advisory.ID, &advisory.Country, &advisory.ScrapedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT section, status, text, detail
		 FROM advisory_sections
		 WHERE advisory_id = $1
		 ORDER BY position`,
		advisory.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			section, status string
			result          entity.SectionResult
		)
		if err := rows.Scan(&section, &status, &result.Text, &result.Detail); err != nil {
			return nil, err
		}
		result.Status = entity.SectionStatus(status)
		advisory.Sections.Set(section, result)
	}

	return &advisory, rows.Err()
}
