package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"clinicdesk/config"
	"clinicdesk/internal/logger"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db := &DB{log: logger.New("test")}
	testConfig := config.Config{
		DatabaseDbPath: filepath.Join(t.TempDir(), "test.db"),
	}

	require.NoError(t, db.initializeSQLiteDB(&gorm.Config{}, testConfig))
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestNew_InvalidConfig(t *testing.T) {
	invalidConfig := config.Config{
		DatabaseDriver:       config.DriverSQLite,
		DatabaseDbPath:       "",
		DatabaseCacheAddress: "",
		DatabaseCachePort:    0,
	}

	_, err := New(invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database path is empty")
}

func TestNew_CacheUnavailable(t *testing.T) {
	testConfig := config.Config{
		DatabaseDriver:       config.DriverSQLite,
		DatabaseDbPath:       ":memory:",
		DatabaseCacheAddress: "",
		DatabaseCachePort:    6379,
	}

	_, err := New(testConfig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address or port is empty")
}

func TestInitializeSQLiteDB_Success(t *testing.T) {
	db := &DB{log: logger.New("test")}

	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	testConfig := config.Config{DatabaseDbPath: dbPath}

	err := db.initializeSQLiteDB(&gorm.Config{}, testConfig)
	require.NoError(t, err)
	assert.NotNil(t, db.SQL)
	assert.Equal(t, "sqlite3", db.Dialect)
	assert.FileExists(t, dbPath)

	assert.NoError(t, db.Close())
}

func TestInitializeSQLiteDB_EmptyPath(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeSQLiteDB(&gorm.Config{}, config.Config{DatabaseDbPath: ""})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database path is empty")
}

func TestInitializeSQLiteDB_InMemory(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeSQLiteDB(&gorm.Config{}, config.Config{DatabaseDbPath: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.SQL.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	_ = sqlDB.Close()
}

func TestInitializeDB_UsesSQLiteByDefault(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeDB(config.Config{DatabaseDbPath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", db.Dialect)

	assert.NoError(t, db.Close())
}

func TestInitializePostgresDB_MissingHost(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializePostgresDB(&gorm.Config{}, config.Config{DatabaseDriver: config.DriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database host or name is empty")
}

func TestMigrate_UpAndDown(t *testing.T) {
	db := newTestDB(t)

	applied, err := db.Migrate(migrate.Up)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	for _, table := range []string{"profiles", "clinics", "doctors", "region_selections", "email_configs"} {
		assert.True(t, db.SQL.Migrator().HasTable(table), "table %s should exist", table)
	}

	applied, err = db.Migrate(migrate.Up)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	applied, err = db.Migrate(migrate.Down)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.False(t, db.SQL.Migrator().HasTable("email_configs"))
}

func TestMigrate_NilDatabase(t *testing.T) {
	db := &DB{log: logger.New("test")}

	_, err := db.Migrate(migrate.Up)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is nil")
}

func TestClose_WithNilSQL(t *testing.T) {
	db := &DB{log: logger.New("test"), SQL: nil}

	assert.NoError(t, db.Close())
}

func TestSQLWithContext(t *testing.T) {
	db := newTestDB(t)

	gormDB := db.SQLWithContext(context.Background())

	assert.NotNil(t, gormDB)
	assert.NotEqual(t, db.SQL, gormDB)
}

func TestTXDefer_Success(t *testing.T) {
	db := newTestDB(t)

	err := db.SQL.Exec("CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT)").Error
	require.NoError(t, err)

	tx := db.SQL.Begin()
	require.NoError(t, tx.Error)

	err = tx.Exec("INSERT INTO test_table (name) VALUES (?)", "test").Error
	require.NoError(t, err)

	assert.NoError(t, TXDefer(tx, db.log))

	var count int64
	err = db.SQL.Table("test_table").Count(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTXDefer_WithTransactionError(t *testing.T) {
	db := newTestDB(t)

	err := db.SQL.Exec("CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT)").Error
	require.NoError(t, err)

	tx := db.SQL.Begin()
	require.NoError(t, tx.Error)

	err = tx.Exec("INSERT INTO test_table (name) VALUES (?)", "test").Error
	require.NoError(t, err)

	tx.Error = fmt.Errorf("simulated transaction error")
	assert.NoError(t, TXDefer(tx, db.log))

	var count int64
	err = db.SQL.Table("test_table").Count(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestInitializeCacheDB_MissingConfig(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeCacheDB(config.Config{DatabaseCacheAddress: "", DatabaseCachePort: 6379})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "address or port is empty")

	err = db.initializeCacheDB(config.Config{DatabaseCacheAddress: "localhost", DatabaseCachePort: 0})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "address or port is empty")
}
