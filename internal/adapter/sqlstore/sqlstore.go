package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/user/advisory-service/internal/entity"
)

//go:embed country_schema.sql
var CountrySchema string

// OpenLibsql connects to a hosted libsql (Turso) database.
func OpenLibsql(dbURL, authToken string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("a libsql url was not specified")
	}
	if authToken != "" {
		u, err := url.Parse(dbURL)
		if err != nil {
			return nil, fmt.Errorf("parse libsql url: %w", err)
		}
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
		dbURL = u.String()
	}
	return sql.Open("libsql", dbURL)
}

// OpenSQLite opens (and creates if needed) a local sqlite file. ":memory:" is accepted.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if path != ":memory:" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			f, err := os.Create(path)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; an in-memory database also lives on one connection only.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureCountrySchema creates the country tables when they do not exist yet.
func EnsureCountrySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, CountrySchema); err != nil {
		return fmt.Errorf("apply country schema: %w", err)
	}
	return nil
}

// TableWriter implements repository.TableWriter and repository.CountryReader on database/sql.
type TableWriter struct {
	db *sql.DB
}

func NewTableWriter(db *sql.DB) *TableWriter {
	return &TableWriter{db: db}
}

func (w *TableWriter) Insert(ctx context.Context, table string, row entity.Row) ([]entity.Row, error) {
	query, args, err := buildInsert(table, row)
	if err != nil {
		return nil, err
	}
	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (w *TableWriter) Children(ctx context.Context, table, countryID string) ([]entity.Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE country_id = ?", quoteIdent(table))
	rows, err := w.db.QueryContext(ctx, query, countryID)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func buildInsert(table string, row entity.Row) (string, []any, error) {
	if len(row) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", quoteIdent(table)), nil, nil
	}

	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	slices.Sort(columns)

	idents := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		v, err := encodeValue(row[c])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", c, err)
		}
		idents[i] = quoteIdent(c)
		args[i] = v
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quoteIdent(table), strings.Join(idents, ", "), placeholders)
	return query, args, nil
}

// encodeValue stores lists and objects as JSON text; sqlite has no array type.
func encodeValue(v any) (any, error) {
	switch v.(type) {
	case []any, map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return v, nil
	}
}

func scanRows(rows *sql.Rows) ([]entity.Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []entity.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(entity.Row, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
