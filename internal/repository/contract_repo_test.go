package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

// setupTestDB opens a private in-memory database per test. The shared
// cache keeps pooled connections on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.District{}, &models.Employee{}, &models.Contract{}, &models.PayRequest{}, &models.Event{}))
	return db
}

func seedContract(t *testing.T, db *gorm.DB, districtID uint, title string, status models.ContractStatus) models.Contract {
	t.Helper()
	contract := models.Contract{
		DistrictID: districtID,
		Title:      title,
		Amount:     1000,
		StartDate:  time.Now().Add(-30 * 24 * time.Hour),
		EndDate:    time.Now().Add(30 * 24 * time.Hour),
		Status:     status,
		CreatedBy:  1,
	}
	require.NoError(t, db.Create(&contract).Error)
	return contract
}

func TestContractRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContractRepository(db)

	seedContract(t, db, 1, "Basketball Coach", models.ContractStatusActive)
	seedContract(t, db, 1, "Drama Club Advisor", models.ContractStatusInactive)
	seedContract(t, db, 2, "Basketball Coach", models.ContractStatusActive)

	contracts, total, err := repo.List(context.Background(), 1, ContractFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, contracts, 2)

	contracts, total, err = repo.List(context.Background(), 1, ContractFilter{Status: models.ContractStatusActive})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Basketball Coach", contracts[0].Title)

	contracts, total, err = repo.List(context.Background(), 1, ContractFilter{Search: "drama"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Drama Club Advisor", contracts[0].Title)
}

func TestContractRepositoryTenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContractRepository(db)

	owned := seedContract(t, db, 1, "Basketball Coach", models.ContractStatusActive)

	_, err := repo.GetByID(context.Background(), 2, owned.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound, "foreign district lookups must read as not found")

	found, err := repo.GetByID(context.Background(), 1, owned.ID)
	require.NoError(t, err)
	require.Equal(t, owned.ID, found.ID)
}

func TestContractRepositoryCreateWithEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContractRepository(db)

	contract := models.Contract{
		DistrictID: 1,
		Title:      "Chess Club Sponsor",
		Amount:     500,
		StartDate:  time.Now(),
		EndDate:    time.Now().Add(90 * 24 * time.Hour),
		Status:     models.ContractStatusActive,
		CreatedBy:  7,
	}
	event := models.Event{
		DistrictID: 1,
		EntityType: models.EntityTypeContract,
		EventType:  models.EventTypeCreated,
		ToStatus:   string(models.ContractStatusActive),
		ActorID:    7,
		ActorRole:  "admin",
	}

	require.NoError(t, repo.CreateWithEvent(context.Background(), &contract, &event))
	require.NotZero(t, contract.ID)
	require.Equal(t, contract.ID, event.EntityID)

	var stored models.Event
	require.NoError(t, db.First(&stored, event.ID).Error)
	require.Equal(t, models.EventTypeCreated, stored.EventType)
}

func TestContractRepositoryUpdateStatusWithEventScopesTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContractRepository(db)

	contract := seedContract(t, db, 1, "Basketball Coach", models.ContractStatusActive)

	foreign := contract
	foreign.DistrictID = 2
	foreign.Status = models.ContractStatusInactive
	event := models.Event{DistrictID: 2, EntityType: models.EntityTypeContract, EntityID: contract.ID, EventType: models.EventTypeStatusChange}

	err := repo.UpdateStatusWithEvent(context.Background(), &foreign, &event)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var unchanged models.Contract
	require.NoError(t, db.First(&unchanged, contract.ID).Error)
	require.Equal(t, models.ContractStatusActive, unchanged.Status)

	var eventCount int64
	require.NoError(t, db.Model(&models.Event{}).Count(&eventCount).Error)
	require.Zero(t, eventCount, "rolled back transaction must not leave an event behind")
}

func TestContractRepositoryCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContractRepository(db)

	seedContract(t, db, 1, "A", models.ContractStatusActive)
	seedContract(t, db, 1, "B", models.ContractStatusActive)
	seedContract(t, db, 1, "C", models.ContractStatusInactive)
	seedContract(t, db, 2, "D", models.ContractStatusActive)

	counts, err := repo.CountByStatus(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[models.ContractStatusActive])
	require.Equal(t, int64(1), counts[models.ContractStatusInactive])
}
