package repositories

import (
	"context"
	"errors"

	"clinicdesk/internal/database"
	"clinicdesk/internal/logger"
	. "clinicdesk/internal/models"
	"clinicdesk/internal/services"
	"clinicdesk/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmailConfigRepository stores one EmailConfig row per actor. Reads always go
// to the database so a completed save is visible to the next load.
type EmailConfigRepository interface {
	GetByActorID(ctx context.Context, actorID string) (*EmailConfig, bool, error)
	Upsert(ctx context.Context, config *EmailConfig) error
}

type emailConfigRepository struct {
	db      database.DB
	secrets *utils.SecretBox
	log     logger.Logger
}

// NewEmailConfig builds the repository. secrets may be nil, in which case
// provider keys are stored unsealed.
func NewEmailConfig(db database.DB, secrets *utils.SecretBox) EmailConfigRepository {
	return &emailConfigRepository{
		db:      db,
		secrets: secrets,
		log:     logger.New("emailConfigRepository"),
	}
}

func (r *emailConfigRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *emailConfigRepository) GetByActorID(
	ctx context.Context,
	actorID string,
) (*EmailConfig, bool, error) {
	log := r.log.Function("GetByActorID")

	var config EmailConfig
	err := r.getDB(ctx).Where("actor_id = ?", actorID).Take(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, log.Err("failed to get email config", err, "actorID", actorID)
	}

	apiKey, err := r.secrets.Open(config.ProviderAPIKey)
	if err != nil {
		return nil, false, log.Err("failed to open provider api key", err, "actorID", actorID)
	}
	config.ProviderAPIKey = apiKey

	return &config, true, nil
}

// Upsert writes the whole row, replacing whatever was stored for the actor.
// The caller's struct is left untouched.
func (r *emailConfigRepository) Upsert(ctx context.Context, config *EmailConfig) error {
	log := r.log.Function("Upsert")

	if config == nil || config.ActorID == "" {
		return log.Error("email config requires an actor id")
	}

	row := config.Clone()
	sealed, err := r.secrets.Seal(row.ProviderAPIKey)
	if err != nil {
		return log.Err("failed to seal provider api key", err, "actorID", config.ActorID)
	}
	row.ProviderAPIKey = sealed

	err = r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return log.Err("failed to upsert email config", err, "actorID", config.ActorID)
	}

	return nil
}
