package seed

import (
	"context"
	"time"

	"clinicdesk/config"
	"clinicdesk/internal/handlers/middleware"
	"clinicdesk/internal/logger"
	. "clinicdesk/internal/models"
	"clinicdesk/internal/repositories"
	"clinicdesk/internal/services"
)

const DemoActorID = "demo-actor"

func stringPtr(s string) *string {
	return &s
}

type Dependencies struct {
	Transactions *services.TransactionService
	Setup        repositories.SetupRepository
	EmailConfigs repositories.EmailConfigRepository
}

// Seed writes a demo actor whose four setup domains are complete and whose
// email settings exist but are disabled.
func Seed(ctx context.Context, deps Dependencies, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data", "actorID", DemoActorID)

	err := deps.Transactions.Execute(ctx, func(ctx context.Context) error {
		if err := deps.Setup.UpsertProfile(ctx, &Profile{
			ActorID:  DemoActorID,
			FullName: stringPtr("Amina Okafor"),
			Phone:    stringPtr("+234 800 000 0000"),
		}); err != nil {
			return err
		}

		if err := deps.Setup.UpsertClinic(ctx, &Clinic{
			ActorID: DemoActorID,
			Name:    stringPtr("Riverside Family Clinic"),
			Address: stringPtr("12 River Road, Lagos"),
		}); err != nil {
			return err
		}

		if err := deps.Setup.UpsertDoctor(ctx, &Doctor{
			ActorID:        DemoActorID,
			FullName:       stringPtr("Dr. Amina Okafor"),
			Specialization: stringPtr("Pediatrics"),
			LicenseNumber:  stringPtr("MDCN-0001"),
		}); err != nil {
			return err
		}

		if err := deps.Setup.UpsertRegion(ctx, &RegionSelection{
			ActorID:  DemoActorID,
			RegionID: stringPtr("ng-lagos"),
		}); err != nil {
			return err
		}

		_, found, err := deps.EmailConfigs.GetByActorID(ctx, DemoActorID)
		if err != nil {
			return err
		}
		if found {
			log.Info("Email config already exists", "actorID", DemoActorID)
			return nil
		}

		emailConfig := DefaultEmailConfig(DemoActorID)
		emailConfig.UpdatedAt = time.Now().UTC()
		return deps.EmailConfigs.Upsert(ctx, &emailConfig)
	})
	if err != nil {
		return log.Err("failed to seed demo actor", err)
	}

	if !config.IsProduction() {
		token, err := middleware.New(config).IssueToken(DemoActorID, 24*time.Hour)
		if err != nil {
			log.Er("failed to issue demo token", err)
		} else {
			log.Info("Demo actor token", "actorID", DemoActorID, "token", token)
		}
	}

	return nil
}
