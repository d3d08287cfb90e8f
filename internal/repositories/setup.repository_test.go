package repositories

import (
	"context"
	"errors"
	"testing"

	. "clinicdesk/internal/models"
	"clinicdesk/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRepository_MissingRecords(t *testing.T) {
	repo := NewSetup(setupTestDB(t))
	ctx := context.Background()

	profile, found, err := repo.GetProfile(ctx, "actor-unknown")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, profile)

	_, found, err = repo.GetClinic(ctx, "actor-unknown")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repo.GetDoctor(ctx, "actor-unknown")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repo.GetRegion(ctx, "actor-unknown")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetupRepository_UpsertAndGet(t *testing.T) {
	repo := NewSetup(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertProfile(ctx, &Profile{ActorID: "actor-1", FullName: stringPtr("Amina Okafor")}))
	require.NoError(t, repo.UpsertClinic(ctx, &Clinic{
		ActorID: "actor-1",
		Name:    stringPtr("Riverside Family Clinic"),
		Address: stringPtr("12 River Rd"),
	}))
	require.NoError(t, repo.UpsertDoctor(ctx, &Doctor{
		ActorID:        "actor-1",
		FullName:       stringPtr("Amina Okafor"),
		Specialization: stringPtr("Family Medicine"),
	}))
	require.NoError(t, repo.UpsertRegion(ctx, &RegionSelection{ActorID: "actor-1", RegionID: stringPtr("ng-lagos")}))

	profile, found, err := repo.GetProfile(ctx, "actor-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Amina Okafor", *profile.FullName)
	assert.NotEmpty(t, profile.ID)

	clinic, found, err := repo.GetClinic(ctx, "actor-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, clinic.IsComplete())

	doctor, found, err := repo.GetDoctor(ctx, "actor-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, doctor.IsComplete())

	region, found, err := repo.GetRegion(ctx, "actor-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ng-lagos", *region.RegionID)
}

func TestSetupRepository_UpsertReplacesByActor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetup(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertClinic(ctx, &Clinic{ActorID: "actor-1", Name: stringPtr("Old Name")}))
	require.NoError(t, repo.UpsertClinic(ctx, &Clinic{
		ActorID: "actor-1",
		Name:    stringPtr("New Name"),
		Address: stringPtr("3 Hill St"),
	}))

	clinic, found, err := repo.GetClinic(ctx, "actor-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "New Name", *clinic.Name)
	assert.Equal(t, "3 Hill St", *clinic.Address)

	var count int64
	require.NoError(t, db.SQL.Model(&Clinic{}).Where("actor_id = ?", "actor-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetupRepository_RecordsAreScopedToActor(t *testing.T) {
	repo := NewSetup(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertProfile(ctx, &Profile{ActorID: "actor-1", FullName: stringPtr("One")}))

	_, found, err := repo.GetProfile(ctx, "actor-2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetupRepository_UsesTransactionFromContext(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetup(db)
	txService := services.NewTransactionService(db)
	failure := errors.New("abort seeding")

	err := txService.Execute(context.Background(), func(ctx context.Context) error {
		require.NoError(t, repo.UpsertProfile(ctx, &Profile{ActorID: "actor-1", FullName: stringPtr("One")}))
		return failure
	})
	require.ErrorIs(t, err, failure)

	_, found, err := repo.GetProfile(context.Background(), "actor-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetupRepository_LookupError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSetup(db)

	mock.ExpectQuery(`FROM "doctors"`).WillReturnError(errors.New("connection reset by peer"))

	doctor, found, err := repo.GetDoctor(context.Background(), "actor-1")
	require.Error(t, err)
	assert.False(t, found)
	assert.Nil(t, doctor)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.NoError(t, mock.ExpectationsWereMet())
}
