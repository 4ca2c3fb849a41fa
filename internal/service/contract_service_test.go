package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/mesaview-usd/extrapay-api/internal/dto"
	"github.com/mesaview-usd/extrapay-api/internal/models"
)

func contractServiceFixture() (*ContractService, *memoryContractRepo, *memoryEvents, *capturePublisher) {
	events := newMemoryEvents()
	repo := newMemoryContractRepo(events)
	publisher := &capturePublisher{}
	svc := NewContractService(repo, validator.New(), publisher, testLogger())
	return svc, repo, events, publisher
}

func validContractPayload() dto.ContractCreateRequest {
	return dto.ContractCreateRequest{
		Title:     "Basketball Coach Stipend",
		Amount:    2500,
		StartDate: time.Now().Format(time.RFC3339),
		EndDate:   time.Now().AddDate(0, 6, 0).Format(time.RFC3339),
	}
}

func TestContractServiceCreate(t *testing.T) {
	svc, _, events, publisher := contractServiceFixture()

	created, err := svc.Create(context.Background(), 1, Actor{ID: 9, Role: "admin"}, validContractPayload())
	require.NoError(t, err)
	require.Equal(t, string(models.ContractStatusActive), created.Status)
	require.Equal(t, uint(9), created.CreatedBy)

	history, err := events.ListByEntity(context.Background(), 1, models.EntityTypeContract, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, models.EventTypeCreated, history[0].EventType)
	require.Equal(t, "Basketball Coach Stipend", history[0].Metadata["title"])
	require.Len(t, publisher.published, 1)
}

func TestContractServiceCreateRejectsInvertedDates(t *testing.T) {
	svc, _, events, _ := contractServiceFixture()

	payload := validContractPayload()
	payload.StartDate = time.Now().AddDate(0, 6, 0).Format(time.RFC3339)
	payload.EndDate = time.Now().Format(time.RFC3339)

	_, err := svc.Create(context.Background(), 1, Actor{ID: 9, Role: "admin"}, payload)
	require.Error(t, err)
	require.Empty(t, events.events)
}

func TestContractServiceUpdateStatus(t *testing.T) {
	svc, _, events, _ := contractServiceFixture()

	created, err := svc.Create(context.Background(), 1, Actor{ID: 9, Role: "admin"}, validContractPayload())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), 1, created.ID, Actor{ID: 9, Role: "admin"}, dto.ContractStatusUpdateRequest{Status: "inactive"})
	require.NoError(t, err)
	require.Equal(t, string(models.ContractStatusInactive), updated.Status)

	reactivated, err := svc.UpdateStatus(context.Background(), 1, created.ID, Actor{ID: 9, Role: "admin"}, dto.ContractStatusUpdateRequest{Status: "active"})
	require.NoError(t, err)
	require.Equal(t, string(models.ContractStatusActive), reactivated.Status)

	history, err := events.ListByEntity(context.Background(), 1, models.EntityTypeContract, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, models.EventTypeStatusChange, history[1].EventType)
	require.Equal(t, "active", history[1].FromStatus)
	require.Equal(t, "inactive", history[1].ToStatus)
}

func TestContractServiceUpdateStatusUnknownStatus(t *testing.T) {
	svc, _, _, _ := contractServiceFixture()

	created, err := svc.Create(context.Background(), 1, Actor{ID: 9, Role: "admin"}, validContractPayload())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), 1, created.ID, Actor{ID: 9, Role: "admin"}, dto.ContractStatusUpdateRequest{Status: "suspended"})
	require.ErrorIs(t, err, ErrUnknownContractStatus)
}

func TestContractServiceExpiredContractRejectsTransitions(t *testing.T) {
	svc, repo, events, _ := contractServiceFixture()

	payload := validContractPayload()
	payload.StartDate = time.Now().AddDate(-1, 0, 0).Format(time.RFC3339)
	payload.EndDate = time.Now().AddDate(0, -1, 0).Format(time.RFC3339)

	contract := models.Contract{
		DistrictID: 1,
		Title:      "Expired Stipend",
		Amount:     100,
		Status:     models.ContractStatusActive,
	}
	contract.StartDate, _ = time.Parse(time.RFC3339, payload.StartDate)
	contract.EndDate, _ = time.Parse(time.RFC3339, payload.EndDate)
	event := models.Event{DistrictID: 1, EntityType: models.EntityTypeContract, EventType: models.EventTypeCreated}
	require.NoError(t, repo.CreateWithEvent(context.Background(), &contract, &event))
	eventCount := len(events.events)

	_, err := svc.UpdateStatus(context.Background(), 1, contract.ID, Actor{ID: 9, Role: "admin"}, dto.ContractStatusUpdateRequest{Status: "inactive"})
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, "expired", transitionErr.From)
	require.Len(t, events.events, eventCount, "rejected transitions append nothing")
}

func TestContractServiceTenantIsolation(t *testing.T) {
	svc, _, _, _ := contractServiceFixture()

	created, err := svc.Create(context.Background(), 1, Actor{ID: 9, Role: "admin"}, validContractPayload())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, created.ID)
	require.ErrorIs(t, err, ErrContractNotFound)

	_, err = svc.UpdateStatus(context.Background(), 2, created.ID, Actor{ID: 9, Role: "admin"}, dto.ContractStatusUpdateRequest{Status: "inactive"})
	require.ErrorIs(t, err, ErrContractNotFound)
}
