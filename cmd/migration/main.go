package main

import (
	"context"
	"flag"
	"os"

	"clinicdesk/cmd/migration/initialize"
	"clinicdesk/cmd/migration/seed"
	"clinicdesk/config"
	"clinicdesk/internal/database"
	"clinicdesk/internal/logger"
	"clinicdesk/internal/repositories"
	"clinicdesk/internal/services"
	"clinicdesk/internal/utils"

	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	withSeed := flag.Bool("seed", false, "seed the demo actor after migrating")
	flag.Parse()

	logger.Init(os.Getenv("ENVIRONMENT"))
	log := logger.New("migration").Function("main")

	if err := run(*direction, *withSeed, log); err != nil {
		log.Er("migration failed", err)
		os.Exit(1)
	}
}

func run(direction string, withSeed bool, log logger.Logger) error {
	config, err := config.InitConfig()
	if err != nil {
		return log.Err("failed to initialize config", err)
	}

	var migrationDirection migrate.MigrationDirection
	switch direction {
	case "up":
		migrationDirection = migrate.Up
	case "down":
		migrationDirection = migrate.Down
	default:
		return log.Error("unknown migration direction", "direction", direction)
	}

	db, err := database.New(config)
	if err != nil {
		return log.Err("failed to connect to database", err)
	}
	defer db.Close()

	if err := initialize.InitializeTables(&db, config, migrationDirection, log); err != nil {
		return err
	}

	if !withSeed || migrationDirection == migrate.Down {
		return nil
	}

	var secrets *utils.SecretBox
	if config.EmailKeySecret != "" {
		if secrets, err = utils.NewSecretBox(config.EmailKeySecret); err != nil {
			return log.Err("failed to create secret box", err)
		}
	}

	return seed.Seed(context.Background(), seed.Dependencies{
		Transactions: services.NewTransactionService(db),
		Setup:        repositories.NewSetup(db),
		EmailConfigs: repositories.NewEmailConfig(db, secrets),
	}, config, log)
}
