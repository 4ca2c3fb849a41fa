package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/dto"
	"github.com/mesaview-usd/extrapay-api/internal/models"
	"github.com/mesaview-usd/extrapay-api/internal/observability"
	"github.com/mesaview-usd/extrapay-api/internal/repository"
)

var (
	ErrContractNotFound      = errors.New("contract not found")
	ErrUnknownContractStatus = errors.New("unknown contract status")
)

type ContractService struct {
	repo      repository.ContractRepository
	validator *validator.Validate
	publisher EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewContractService(repo repository.ContractRepository, v *validator.Validate, publisher EventPublisher, logger zerolog.Logger) *ContractService {
	return &ContractService{
		repo:      repo,
		validator: v,
		publisher: publisher,
		logger:    logger.With().Str("component", "contract_service").Logger(),
		now:       time.Now,
	}
}

func (s *ContractService) Create(ctx context.Context, districtID uint, actor Actor, payload dto.ContractCreateRequest) (dto.ContractResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContractResponse{}, err
	}

	startDate, err := time.Parse(time.RFC3339, payload.StartDate)
	if err != nil {
		return dto.ContractResponse{}, fmt.Errorf("%w: start_date", ErrInvalidDate)
	}
	endDate, err := time.Parse(time.RFC3339, payload.EndDate)
	if err != nil {
		return dto.ContractResponse{}, fmt.Errorf("%w: end_date", ErrInvalidDate)
	}
	if !endDate.After(startDate) {
		return dto.ContractResponse{}, fmt.Errorf("%w: end_date must be after start_date", ErrInvalidDate)
	}

	contract := models.Contract{
		DistrictID:  districtID,
		Title:       payload.Title,
		Description: payload.Description,
		Amount:      payload.Amount,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      models.ContractStatusActive,
		CreatedBy:   actor.ID,
	}
	event := models.Event{
		DistrictID: districtID,
		EntityType: models.EntityTypeContract,
		EventType:  models.EventTypeCreated,
		ToStatus:   string(models.ContractStatusActive),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Metadata: datatypes.JSONMap{
			"title":  payload.Title,
			"amount": payload.Amount,
		},
	}

	if err := s.repo.CreateWithEvent(ctx, &contract, &event); err != nil {
		s.logger.Error().Err(err).Uint("district_id", districtID).Msg("failed to create contract")
		return dto.ContractResponse{}, err
	}
	observability.EventsAppended().WithLabelValues(event.EntityType, event.EventType).Inc()
	s.publisher.Publish(ctx, event)

	return dto.NewContractResponse(contract, s.now()), nil
}

func (s *ContractService) Get(ctx context.Context, districtID, contractID uint) (dto.ContractResponse, error) {
	contract, err := s.repo.GetByID(ctx, districtID, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContractResponse{}, ErrContractNotFound
		}
		return dto.ContractResponse{}, err
	}
	return dto.NewContractResponse(contract, s.now()), nil
}

func (s *ContractService) List(ctx context.Context, districtID uint, query dto.ContractListRequest) (dto.ContractListResponse, error) {
	filter := repository.ContractFilter{
		Status:   models.ContractStatus(query.Status),
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" && !filter.Status.Valid() {
		return dto.ContractListResponse{}, ErrUnknownContractStatus
	}

	contracts, total, err := s.repo.List(ctx, districtID, filter)
	if err != nil {
		return dto.ContractListResponse{}, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = repository.DefaultPageSize
	}
	return dto.ContractListResponse{
		Contracts: dto.NewContractResponseSlice(contracts, s.now()),
		Pagination: dto.PaginationMeta{
			Page:       maxInt(filter.Page, 1),
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}, nil
}

// UpdateStatus applies a manual status change. The guard evaluates the
// contract's effective status, so a time-expired contract rejects every
// transition even though the stored column still reads active.
func (s *ContractService) UpdateStatus(ctx context.Context, districtID, contractID uint, actor Actor, payload dto.ContractStatusUpdateRequest) (dto.ContractResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContractResponse{}, err
	}
	target := models.ContractStatus(payload.Status)
	if !target.Valid() {
		return dto.ContractResponse{}, ErrUnknownContractStatus
	}

	contract, err := s.repo.GetByID(ctx, districtID, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContractResponse{}, ErrContractNotFound
		}
		return dto.ContractResponse{}, err
	}

	now := s.now()
	from := contract.EffectiveStatus(now)
	if !from.CanTransitionTo(target) {
		return dto.ContractResponse{}, &InvalidTransitionError{
			EntityType: models.EntityTypeContract,
			From:       string(from),
			To:         string(target),
		}
	}

	contract.Status = target
	event := models.Event{
		DistrictID: districtID,
		EntityType: models.EntityTypeContract,
		EntityID:   contract.ID,
		EventType:  models.EventTypeStatusChange,
		FromStatus: string(from),
		ToStatus:   string(target),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
	}
	if err := s.repo.UpdateStatusWithEvent(ctx, &contract, &event); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContractResponse{}, ErrContractNotFound
		}
		s.logger.Error().Err(err).Uint("contract_id", contractID).Msg("failed to update contract status")
		return dto.ContractResponse{}, err
	}
	observability.EventsAppended().WithLabelValues(event.EntityType, event.EventType).Inc()
	s.publisher.Publish(ctx, event)

	return dto.NewContractResponse(contract, now), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
