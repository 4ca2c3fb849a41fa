package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

func seedRequest(t *testing.T, db *gorm.DB, districtID, contractID uint, status models.RequestStatus, workDate time.Time) models.PayRequest {
	t.Helper()
	request := models.PayRequest{
		DistrictID: districtID,
		ContractID: contractID,
		EmployeeID: 10,
		Amount:     200,
		Hours:      8,
		WorkDate:   workDate,
		Status:     status,
	}
	require.NoError(t, db.Create(&request).Error)
	return request
}

func TestPayRequestRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPayRequestRepository(db)
	contract := seedContract(t, db, 1, "Basketball Coach", models.ContractStatusActive)
	other := seedContract(t, db, 1, "Drama Club Advisor", models.ContractStatusActive)

	seedRequest(t, db, 1, contract.ID, models.RequestStatusPending, time.Now())
	seedRequest(t, db, 1, contract.ID, models.RequestStatusApproved, time.Now())
	seedRequest(t, db, 1, other.ID, models.RequestStatusPending, time.Now())
	seedRequest(t, db, 2, contract.ID, models.RequestStatusPending, time.Now())

	_, total, err := repo.List(context.Background(), 1, PayRequestFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	requests, total, err := repo.List(context.Background(), 1, PayRequestFilter{Status: models.RequestStatusPending, ContractID: &contract.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, contract.ID, requests[0].ContractID)
}

func TestPayRequestRepositoryListExcludesArchived(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPayRequestRepository(db)
	contract := seedContract(t, db, 1, "Basketball Coach", models.ContractStatusActive)

	archived := seedRequest(t, db, 1, contract.ID, models.RequestStatusPaid, time.Now().Add(-400*24*time.Hour))
	stamp := time.Now()
	require.NoError(t, db.Model(&archived).Update("archived_at", stamp).Error)
	seedRequest(t, db, 1, contract.ID, models.RequestStatusPending, time.Now())

	_, total, err := repo.List(context.Background(), 1, PayRequestFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	_, total, err = repo.List(context.Background(), 1, PayRequestFilter{IncludeArchived: true})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
}

func TestPayRequestRepositoryUpdateAtomicity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPayRequestRepository(db)
	contract := seedContract(t, db, 1, "Basketball Coach", models.ContractStatusActive)
	request := seedRequest(t, db, 1, contract.ID, models.RequestStatusPending, time.Now())

	injected := errors.New("injected event write failure")
	eventType := reflect.TypeOf(models.Event{})
	err := db.Callback().Create().Before("gorm:create").Register("fail_event_writes", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.ModelType == eventType {
			_ = tx.AddError(injected)
		}
	})
	require.NoError(t, err)

	request.Status = models.RequestStatusApproved
	event := models.Event{
		DistrictID: 1,
		EntityType: models.EntityTypeRequest,
		EntityID:   request.ID,
		EventType:  models.EventTypeApproved,
		FromStatus: string(models.RequestStatusPending),
		ToStatus:   string(models.RequestStatusApproved),
	}

	err = repo.UpdateStatusWithEvent(context.Background(), &request, &event)
	require.ErrorIs(t, err, injected)

	var stored models.PayRequest
	require.NoError(t, db.First(&stored, request.ID).Error)
	require.Equal(t, models.RequestStatusPending, stored.Status, "entity update must roll back with the failed event append")

	var eventCount int64
	require.NoError(t, db.Model(&models.Event{}).Count(&eventCount).Error)
	require.Zero(t, eventCount)
}

func TestPayRequestRepositoryArchiveTerminalBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPayRequestRepository(db)
	contract := seedContract(t, db, 1, "Basketball Coach", models.ContractStatusActive)

	old := time.Now().Add(-400 * 24 * time.Hour)
	recent := time.Now().Add(-10 * 24 * time.Hour)

	oldPaid := seedRequest(t, db, 1, contract.ID, models.RequestStatusPaid, old)
	seedRequest(t, db, 1, contract.ID, models.RequestStatusPaid, recent)
	seedRequest(t, db, 1, contract.ID, models.RequestStatusPending, old)
	seedRequest(t, db, 2, contract.ID, models.RequestStatusRejected, old)

	cutoff := time.Now().Add(-365 * 24 * time.Hour)
	scanned, archived, err := repo.ArchiveTerminalBefore(context.Background(), 1, cutoff, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(2), scanned, "both terminal requests in the district are scanned")
	require.Equal(t, int64(1), archived)

	var stored models.PayRequest
	require.NoError(t, db.First(&stored, oldPaid.ID).Error)
	require.NotNil(t, stored.ArchivedAt)

	// A second run finds nothing new to archive.
	_, archived, err = repo.ArchiveTerminalBefore(context.Background(), 1, cutoff, time.Now())
	require.NoError(t, err)
	require.Zero(t, archived)
}
