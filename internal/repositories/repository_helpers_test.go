package repositories

import (
	"path/filepath"
	"testing"

	"clinicdesk/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repo.db")), &gorm.Config{})
	require.NoError(t, err)

	db := database.DB{SQL: gormDB, Dialect: "sqlite3"}
	_, err = db.Migrate(migrate.Up)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// setupMockDB wires gorm's postgres dialector to a sqlmock connection so
// backend failures can be injected.
func setupMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })

	return database.DB{SQL: gormDB, Dialect: "postgres"}, mock
}

func stringPtr(s string) *string {
	return &s
}
