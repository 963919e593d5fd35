package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/advisory-service/internal/entity"
)

// TableWriterImpl inserts relay rows straight into the country tables and reads them back.
// It implements both repository.TableWriter and repository.CountryReader.
type TableWriterImpl struct {
	db *pgxpool.Pool
}

// NewTableWriter creates a new instance of TableWriterImpl.
func NewTableWriter(db *pgxpool.Pool) *TableWriterImpl {
	return &TableWriterImpl{db: db}
}

// Insert writes one row and returns what the database stored.
func (w *TableWriterImpl) Insert(ctx context.Context, table string, row entity.Row) ([]entity.Row, error) {
	query, args, err := buildInsert(table, row)
	if err != nil {
		return nil, err
	}

	rows, err := w.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

// Children returns every row of a child table that belongs to the country.
func (w *TableWriterImpl) Children(ctx context.Context, table, countryID string) ([]entity.Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE country_id = $1", pgx.Identifier{table}.Sanitize())
	rows, err := w.db.Query(ctx, query, countryID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func collectRows(rows pgx.Rows) ([]entity.Row, error) {
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Row, len(maps))
	for i, m := range maps {
		out[i] = entity.Row(m)
	}
	return out, nil
}

// buildInsert renders INSERT ... RETURNING * with columns in a stable order.
func buildInsert(table string, row entity.Row) (string, []any, error) {
	target := pgx.Identifier{table}.Sanitize()
	if len(row) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", target), nil, nil
	}

	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	slices.Sort(columns)

	idents := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		v, err := encodeValue(row[c])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", c, err)
		}
		idents[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = v
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		target, strings.Join(idents, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

// encodeValue maps decoded JSON onto types pgx can send: string lists become text[],
// any other list or object becomes a JSON document.
func encodeValue(v any) (any, error) {
	switch val := v.(type) {
	case []any:
		strs := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return json.Marshal(val)
			}
			strs = append(strs, s)
		}
		return strs, nil
	case map[string]any:
		return json.Marshal(val)
	default:
		return v, nil
	}
}
