package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/adapter/httpfetch"
	"github.com/user/advisory-service/internal/adapter/postgrest"
	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/pkg/config"
)

func TestPageFetcherHTTP(t *testing.T) {
	cfg := &config.Config{FetchMode: "http", UserAgent: "Mozilla/5.0", FetchTimeout: time.Second}
	f, closeFn, err := PageFetcher(cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &httpfetch.Fetcher{}, f)
}

func TestPageFetcherRejectsUnknownMode(t *testing.T) {
	_, _, err := PageFetcher(&config.Config{FetchMode: "carrier-pigeon"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown fetch mode")
}

func TestPageFetcherRejectsBadProxy(t *testing.T) {
	_, _, err := PageFetcher(&config.Config{FetchMode: "http", Proxies: []string{"http://[::1"}}, zap.NewNop())
	assert.Error(t, err)
}

func TestRelayBackendPostgrest(t *testing.T) {
	store, closeFn, err := RelayBackend(context.Background(), BackendPostgrest, &config.Config{SupabaseURL: "https://x.supabase.co"})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &postgrest.Client{}, store)
}

func TestRelayBackendSQLiteCreatesSchema(t *testing.T) {
	cfg := &config.Config{SQLitePath: filepath.Join(t.TempDir(), "relay.db")}
	store, closeFn, err := RelayBackend(context.Background(), BackendSQLite, cfg)
	require.NoError(t, err)
	defer closeFn()

	rows, err := store.Insert(context.Background(), "countries", entity.Row{"id": "TG", "name": "Togo"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRelayBackendUnknown(t *testing.T) {
	_, _, err := RelayBackend(context.Background(), "mongodb", &config.Config{})
	assert.ErrorContains(t, err, "unknown relay backend")
}
