package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/models"
	"github.com/mesaview-usd/extrapay-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// memoryEvents is an append-only in-memory event store shared between the
// fake repositories, so entity writes and event appends can be checked as
// a pair.
type memoryEvents struct {
	nextID     uint
	events     []models.Event
	failAppend error
}

func newMemoryEvents() *memoryEvents {
	return &memoryEvents{nextID: 1}
}

func (m *memoryEvents) Append(_ context.Context, event *models.Event) error {
	if m.failAppend != nil {
		return m.failAppend
	}
	event.ID = m.nextID
	m.nextID++
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *memoryEvents) ListByEntity(_ context.Context, districtID uint, entityType string, entityID uint) ([]models.Event, error) {
	var out []models.Event
	for _, event := range m.events {
		if event.DistrictID == districtID && event.EntityType == entityType && event.EntityID == entityID {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryEvents) Count(_ context.Context, districtID uint) (int64, error) {
	var count int64
	for _, event := range m.events {
		if event.DistrictID == districtID {
			count++
		}
	}
	return count, nil
}

type memoryContractRepo struct {
	nextID    uint
	contracts map[uint]models.Contract
	events    *memoryEvents
}

func newMemoryContractRepo(events *memoryEvents) *memoryContractRepo {
	return &memoryContractRepo{nextID: 1, contracts: make(map[uint]models.Contract), events: events}
}

func (m *memoryContractRepo) List(_ context.Context, districtID uint, filter repository.ContractFilter) ([]models.Contract, int64, error) {
	var out []models.Contract
	for _, contract := range m.contracts {
		if contract.DistrictID != districtID {
			continue
		}
		if filter.Status != "" && contract.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(contract.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, contract)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memoryContractRepo) GetByID(_ context.Context, districtID, id uint) (models.Contract, error) {
	contract, ok := m.contracts[id]
	if !ok || contract.DistrictID != districtID {
		return models.Contract{}, gorm.ErrRecordNotFound
	}
	return contract, nil
}

func (m *memoryContractRepo) CreateWithEvent(ctx context.Context, contract *models.Contract, event *models.Event) error {
	contract.ID = m.nextID
	event.EntityID = contract.ID
	if err := m.events.Append(ctx, event); err != nil {
		return err
	}
	m.nextID++
	contract.CreatedAt = time.Now()
	contract.UpdatedAt = contract.CreatedAt
	m.contracts[contract.ID] = *contract
	return nil
}

func (m *memoryContractRepo) UpdateStatusWithEvent(ctx context.Context, contract *models.Contract, event *models.Event) error {
	stored, ok := m.contracts[contract.ID]
	if !ok || stored.DistrictID != contract.DistrictID {
		return gorm.ErrRecordNotFound
	}
	if err := m.events.Append(ctx, event); err != nil {
		return err
	}
	stored.Status = contract.Status
	stored.UpdatedAt = time.Now()
	m.contracts[contract.ID] = stored
	return nil
}

func (m *memoryContractRepo) CountByStatus(_ context.Context, districtID uint) (map[models.ContractStatus]int64, error) {
	counts := make(map[models.ContractStatus]int64)
	for _, contract := range m.contracts {
		if contract.DistrictID == districtID {
			counts[contract.Status]++
		}
	}
	return counts, nil
}

type memoryRequestRepo struct {
	nextID   uint
	requests map[uint]models.PayRequest
	events   *memoryEvents
}

func newMemoryRequestRepo(events *memoryEvents) *memoryRequestRepo {
	return &memoryRequestRepo{nextID: 1, requests: make(map[uint]models.PayRequest), events: events}
}

func (m *memoryRequestRepo) List(_ context.Context, districtID uint, filter repository.PayRequestFilter) ([]models.PayRequest, int64, error) {
	var out []models.PayRequest
	for _, request := range m.requests {
		if request.DistrictID != districtID {
			continue
		}
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		if filter.ContractID != nil && request.ContractID != *filter.ContractID {
			continue
		}
		if filter.EmployeeID != nil && request.EmployeeID != *filter.EmployeeID {
			continue
		}
		if !filter.IncludeArchived && request.ArchivedAt != nil {
			continue
		}
		out = append(out, request)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memoryRequestRepo) GetByID(_ context.Context, districtID, id uint) (models.PayRequest, error) {
	request, ok := m.requests[id]
	if !ok || request.DistrictID != districtID {
		return models.PayRequest{}, gorm.ErrRecordNotFound
	}
	return request, nil
}

func (m *memoryRequestRepo) CreateWithEvent(ctx context.Context, request *models.PayRequest, event *models.Event) error {
	request.ID = m.nextID
	event.EntityID = request.ID
	if err := m.events.Append(ctx, event); err != nil {
		return err
	}
	m.nextID++
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	m.requests[request.ID] = *request
	return nil
}

func (m *memoryRequestRepo) UpdateStatusWithEvent(ctx context.Context, request *models.PayRequest, event *models.Event) error {
	stored, ok := m.requests[request.ID]
	if !ok || stored.DistrictID != request.DistrictID {
		return gorm.ErrRecordNotFound
	}
	if err := m.events.Append(ctx, event); err != nil {
		return err
	}
	stored.Status = request.Status
	stored.RejectionReason = request.RejectionReason
	stored.UpdatedAt = time.Now()
	m.requests[request.ID] = stored
	return nil
}

func (m *memoryRequestRepo) CountByStatus(_ context.Context, districtID uint) (map[models.RequestStatus]int64, error) {
	counts := make(map[models.RequestStatus]int64)
	for _, request := range m.requests {
		if request.DistrictID == districtID {
			counts[request.Status]++
		}
	}
	return counts, nil
}

func (m *memoryRequestRepo) SumAmountByStatus(_ context.Context, districtID uint, status models.RequestStatus) (float64, error) {
	var total float64
	for _, request := range m.requests {
		if request.DistrictID == districtID && request.Status == status {
			total += request.Amount
		}
	}
	return total, nil
}

func (m *memoryRequestRepo) ArchiveTerminalBefore(_ context.Context, districtID uint, cutoff, stamp time.Time) (int64, int64, error) {
	var scanned, archived int64
	for id, request := range m.requests {
		if request.DistrictID != districtID || !request.Status.Terminal() || request.ArchivedAt != nil {
			continue
		}
		scanned++
		if request.WorkDate.Before(cutoff) {
			at := stamp
			request.ArchivedAt = &at
			m.requests[id] = request
			archived++
		}
	}
	return scanned, archived, nil
}

type memoryEmployeeRepo struct {
	employees map[uint]models.Employee
}

func newMemoryEmployeeRepo() *memoryEmployeeRepo {
	return &memoryEmployeeRepo{employees: make(map[uint]models.Employee)}
}

func (m *memoryEmployeeRepo) Count(_ context.Context, districtID uint) (int64, error) {
	var count int64
	for _, employee := range m.employees {
		if employee.DistrictID == districtID {
			count++
		}
	}
	return count, nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	published []models.Event
}

func (p *capturePublisher) Publish(_ context.Context, event models.Event) {
	p.published = append(p.published, event)
}
