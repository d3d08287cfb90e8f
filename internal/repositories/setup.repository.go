package repositories

import (
	"context"
	"errors"

	"clinicdesk/internal/database"
	"clinicdesk/internal/logger"
	. "clinicdesk/internal/models"
	"clinicdesk/internal/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetupRepository reads and writes the four per-actor configuration records.
// Lookups report a missing row as found=false with a nil error.
type SetupRepository interface {
	GetProfile(ctx context.Context, actorID string) (*Profile, bool, error)
	GetClinic(ctx context.Context, actorID string) (*Clinic, bool, error)
	GetDoctor(ctx context.Context, actorID string) (*Doctor, bool, error)
	GetRegion(ctx context.Context, actorID string) (*RegionSelection, bool, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
	UpsertClinic(ctx context.Context, clinic *Clinic) error
	UpsertDoctor(ctx context.Context, doctor *Doctor) error
	UpsertRegion(ctx context.Context, region *RegionSelection) error
}

type setupRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSetup(db database.DB) SetupRepository {
	return &setupRepository{
		db:  db,
		log: logger.New("setupRepository"),
	}
}

func (r *setupRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func findByActor[T any](db *gorm.DB, actorID string) (*T, bool, error) {
	var record T
	err := db.Where("actor_id = ?", actorID).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (r *setupRepository) GetProfile(ctx context.Context, actorID string) (*Profile, bool, error) {
	profile, found, err := findByActor[Profile](r.getDB(ctx), actorID)
	if err != nil {
		return nil, false, r.log.Function("GetProfile").
			Err("failed to get profile", err, "actorID", actorID)
	}
	return profile, found, nil
}

func (r *setupRepository) GetClinic(ctx context.Context, actorID string) (*Clinic, bool, error) {
	clinic, found, err := findByActor[Clinic](r.getDB(ctx), actorID)
	if err != nil {
		return nil, false, r.log.Function("GetClinic").
			Err("failed to get clinic", err, "actorID", actorID)
	}
	return clinic, found, nil
}

func (r *setupRepository) GetDoctor(ctx context.Context, actorID string) (*Doctor, bool, error) {
	doctor, found, err := findByActor[Doctor](r.getDB(ctx), actorID)
	if err != nil {
		return nil, false, r.log.Function("GetDoctor").
			Err("failed to get doctor", err, "actorID", actorID)
	}
	return doctor, found, nil
}

func (r *setupRepository) GetRegion(ctx context.Context, actorID string) (*RegionSelection, bool, error) {
	region, found, err := findByActor[RegionSelection](r.getDB(ctx), actorID)
	if err != nil {
		return nil, false, r.log.Function("GetRegion").
			Err("failed to get region selection", err, "actorID", actorID)
	}
	return region, found, nil
}

func (r *setupRepository) upsertByActor(ctx context.Context, record any, columns ...string) error {
	return r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at", "deleted_at")),
	}).Create(record).Error
}

func (r *setupRepository) UpsertProfile(ctx context.Context, profile *Profile) error {
	if err := r.upsertByActor(ctx, profile, "full_name", "phone"); err != nil {
		return r.log.Function("UpsertProfile").
			Err("failed to upsert profile", err, "actorID", profile.ActorID)
	}
	return nil
}

func (r *setupRepository) UpsertClinic(ctx context.Context, clinic *Clinic) error {
	if err := r.upsertByActor(ctx, clinic, "name", "address", "phone"); err != nil {
		return r.log.Function("UpsertClinic").
			Err("failed to upsert clinic", err, "actorID", clinic.ActorID)
	}
	return nil
}

func (r *setupRepository) UpsertDoctor(ctx context.Context, doctor *Doctor) error {
	if err := r.upsertByActor(ctx, doctor, "full_name", "specialization", "license_number"); err != nil {
		return r.log.Function("UpsertDoctor").
			Err("failed to upsert doctor", err, "actorID", doctor.ActorID)
	}
	return nil
}

func (r *setupRepository) UpsertRegion(ctx context.Context, region *RegionSelection) error {
	if err := r.upsertByActor(ctx, region, "region_id"); err != nil {
		return r.log.Function("UpsertRegion").
			Err("failed to upsert region selection", err, "actorID", region.ActorID)
	}
	return nil
}
