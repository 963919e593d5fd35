package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/advisory-service/internal/entity"
)

// FailedSectionRepoImpl provides a concrete implementation for the FailedSectionRepository interface using PostgreSQL.
type FailedSectionRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedSectionRepo creates a new instance of FailedSectionRepoImpl.
func NewFailedSectionRepo(db *pgxpool.Pool) *FailedSectionRepoImpl {
	return &FailedSectionRepoImpl{db: db}
}

// SaveOrUpdate creates or updates a record for a failed section.
// It increments attempt_count on conflict.
func (r *FailedSectionRepoImpl) SaveOrUpdate(ctx context.Context, failed *entity.FailedSection) error {
	query := `
		INSERT INTO failed_sections (country, section, failure_reason, last_attempt_timestamp, attempt_count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (country, section) DO UPDATE SET
			failure_reason = EXCLUDED.failure_reason,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
			attempt_count = failed_sections.attempt_count + 1
		RETURNING id, attempt_count;
	`
	return r.db.QueryRow(ctx, query,
		failed.Country,
		failed.Section,
		failed.FailureReason,
		failed.LastAttemptTimestamp,
	).Scan(&failed.ID, &failed.AttemptCount)
}

// FindByCountry lists the sections of a country whose last fetch failed.
func (r *FailedSectionRepoImpl) FindByCountry(ctx context.Context, country string) ([]*entity.FailedSection, error) {
	query := `
		SELECT id, country, section, failure_reason, last_attempt_timestamp, attempt_count
		FROM failed_sections
		WHERE country = $1
		ORDER BY section ASC;
	`
	rows, err := r.db.Query(ctx, query, country)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failed []*entity.FailedSection
	for rows.Next() {
		var fs entity.FailedSection
		if err := rows.Scan(
			&fs.ID,
			&fs.Country,
			&fs.Section,
			&fs.FailureReason,
			&fs.LastAttemptTimestamp,
			&fs.AttemptCount,
		); err != nil {
			return nil, err
		}
		failed = append(failed, &fs)
	}

	return failed, rows.Err()
}

// Delete removes a failed section record, typically after a successful fetch.
func (r *FailedSectionRepoImpl) Delete(ctx context.Context, country, section string) error {
	query := `DELETE FROM failed_sections WHERE country = $1 AND section = $2;`
	_, err := r.db.Exec(ctx, query, country, section)
	return err
}
