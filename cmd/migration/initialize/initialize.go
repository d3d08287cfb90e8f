package initialize

import (
	"clinicdesk/config"
	"clinicdesk/internal/database"
	"clinicdesk/internal/logger"

	migrate "github.com/rubenv/sql-migrate"
)

// InitializeTables applies (or rolls back) the embedded schema migrations.
func InitializeTables(
	db *database.DB,
	config config.Config,
	direction migrate.MigrationDirection,
	log logger.Logger,
) error {
	log = log.Function("InitializeTables")
	log.Info("Running migrations", "driver", config.DatabaseDriver, "direction", directionName(direction))

	applied, err := db.Migrate(direction)
	if err != nil {
		return log.Err("failed to run migrations", err)
	}

	log.Info("Table initialization complete", "applied", applied)
	return nil
}

func directionName(direction migrate.MigrationDirection) string {
	if direction == migrate.Down {
		return "down"
	}
	return "up"
}
