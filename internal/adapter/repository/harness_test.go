package repository

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nearbasket/internal/infrastructure/cache"
	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
)

// flakyTables forwards to a real table client until it is taken offline.
type flakyTables struct {
	remote.TableClient
	offline atomic.Bool
}

func (f *flakyTables) fail() error {
	if f.offline.Load() {
		return errors.Remote("Unable to reach the server", 0, nil)
	}
	return nil
}

func (f *flakyTables) Select(ctx context.Context, table string, q remote.Query, out interface{}) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.TableClient.Select(ctx, table, q, out)
}

func (f *flakyTables) Insert(ctx context.Context, table string, rows interface{}) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.TableClient.Insert(ctx, table, rows)
}

func (f *flakyTables) Upsert(ctx context.Context, table string, rows interface{}, onConflict string) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.TableClient.Upsert(ctx, table, rows, onConflict)
}

func (f *flakyTables) Update(ctx context.Context, table string, q remote.Query, patch map[string]interface{}, out interface{}) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.TableClient.Update(ctx, table, q, patch, out)
}

func (f *flakyTables) Delete(ctx context.Context, table string, q remote.Query) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.TableClient.Delete(ctx, table, q)
}

type harness struct {
	tables  *flakyTables
	gateway *remote.Gateway
	cache   *cache.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "remote.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, remote.MigrateSQL(db))

	local, err := cache.Open(filepath.Join(dir, "cache.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	tables := &flakyTables{TableClient: remote.NewSQLTables(db)}
	return &harness{
		tables:  tables,
		gateway: remote.NewGateway(tables),
		cache:   local,
	}
}

func (h *harness) goOffline() { h.tables.offline.Store(true) }

func (h *harness) goOnline() { h.tables.offline.Store(false) }

func (h *harness) seed(t *testing.T, table string, rows interface{}) {
	t.Helper()
	require.NoError(t, h.tables.Insert(context.Background(), table, rows))
}
