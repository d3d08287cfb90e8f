package database

import (
	"embed"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFS,
		Root:       "migrations",
	}
}

// Migrate applies (migrate.Up) or rolls back (migrate.Down) the embedded
// schema and returns the number of migrations run.
func (s *DB) Migrate(direction migrate.MigrationDirection) (int, error) {
	log := s.log.Function("Migrate")

	if s.SQL == nil {
		return 0, log.ErrMsg("database is nil")
	}

	sqlDB, err := s.SQL.DB()
	if err != nil {
		return 0, log.Err("failed to get database from GORM", err)
	}

	dialect := s.Dialect
	if dialect == "" {
		dialect = "sqlite3"
	}

	applied, err := migrate.Exec(sqlDB, dialect, migrationSource(), direction)
	if err != nil {
		return applied, log.Err("failed to run migrations", err, "dialect", dialect)
	}

	log.Info("Migrations complete", "applied", applied, "dialect", dialect)
	return applied, nil
}
