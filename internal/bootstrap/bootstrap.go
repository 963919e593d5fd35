// Package bootstrap builds the adapters selected by configuration, shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/adapter/chromedp_crawler"
	"github.com/user/advisory-service/internal/adapter/httpfetch"
	"github.com/user/advisory-service/internal/adapter/postgres"
	"github.com/user/advisory-service/internal/adapter/postgrest"
	"github.com/user/advisory-service/internal/adapter/sqlstore"
	"github.com/user/advisory-service/internal/repository"
	"github.com/user/advisory-service/pkg/config"
	"github.com/user/advisory-service/pkg/proxy"
)

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"

	BackendPostgres  = "postgres"
	BackendPostgrest = "postgrest"
	BackendLibsql    = "libsql"
	BackendSQLite    = "sqlite"
)

// PageFetcher returns the fetcher for cfg.FetchMode and a func releasing its resources.
func PageFetcher(cfg *config.Config, logger *zap.Logger) (repository.PageFetcher, func(), error) {
	switch cfg.FetchMode {
	case "", FetchModeHTTP:
		proxies, err := proxy.NewManager(cfg.Proxies)
		if err != nil {
			return nil, nil, err
		}
		opts := httpfetch.Options{
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.FetchTimeout,
			Logger:    logger,
		}
		if proxies.Len() > 0 {
			opts.Proxies = proxies
		}
		f := httpfetch.New(opts)
		return f, func() {}, nil
	case FetchModeBrowser:
		f := chromedp_crawler.NewChromedpFetcher(cfg.MaxConcurrency, cfg.FetchTimeout, cfg.UserAgent, logger)
		return f, f.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown fetch mode %q", cfg.FetchMode)
	}
}

// RelayStore is a relay backend that can both write and read country rows.
type RelayStore interface {
	repository.TableWriter
	repository.CountryReader
}

// RelayBackend opens the store named by backend and returns it with a close func.
func RelayBackend(ctx context.Context, backend string, cfg *config.Config) (RelayStore, func(), error) {
	switch backend {
	case BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		if err := postgres.EnsureCountrySchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewTableWriter(pool), pool.Close, nil
	case BackendPostgrest:
		return postgrest.New(cfg.SupabaseURL, cfg.SupabaseKey), func() {}, nil
	case BackendLibsql:
		db, err := sqlstore.OpenLibsql(cfg.LibsqlURL, cfg.LibsqlAuthToken)
		if err != nil {
			return nil, nil, err
		}
		return sqlstore.NewTableWriter(db), func() { db.Close() }, nil
	case BackendSQLite:
		db, err := sqlstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlstore.EnsureCountrySchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlstore.NewTableWriter(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown relay backend %q", backend)
	}
}
