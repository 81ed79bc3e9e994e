// Package persistencetest opens throwaway in-memory databases for tests.
package persistencetest

import (
	"testing"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/persistence"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database. A single connection keeps every
// statement on the same memory database.
func Open(t testing.TB) *persistence.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(persistence.AllModels()...))

	db, err := persistence.Wrap(gdb)
	require.NoError(t, err)
	return db
}
