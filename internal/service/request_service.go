package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/dto"
	"github.com/mesaview-usd/extrapay-api/internal/models"
	"github.com/mesaview-usd/extrapay-api/internal/observability"
	"github.com/mesaview-usd/extrapay-api/internal/repository"
)

var (
	ErrRequestNotFound      = errors.New("pay request not found")
	ErrReasonRequired       = errors.New("rejection reason is required")
	ErrContractNotAccepting = errors.New("contract is not accepting pay requests")
	ErrUnknownRequestStatus = errors.New("unknown pay request status")
)

type PayRequestService struct {
	repo      repository.PayRequestRepository
	contracts repository.ContractRepository
	validator *validator.Validate
	publisher EventPublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

func NewPayRequestService(repo repository.PayRequestRepository, contracts repository.ContractRepository, v *validator.Validate, publisher EventPublisher, logger zerolog.Logger) *PayRequestService {
	return &PayRequestService{
		repo:      repo,
		contracts: contracts,
		validator: v,
		publisher: publisher,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "pay_request_service").Logger(),
		now:       time.Now,
	}
}

func (s *PayRequestService) Create(ctx context.Context, districtID uint, actor Actor, payload dto.PayRequestCreateRequest) (dto.PayRequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PayRequestResponse{}, err
	}

	workDate, err := time.Parse(time.RFC3339, payload.WorkDate)
	if err != nil {
		return dto.PayRequestResponse{}, fmt.Errorf("%w: work_date", ErrInvalidDate)
	}

	contract, err := s.contracts.GetByID(ctx, districtID, payload.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PayRequestResponse{}, ErrContractNotFound
		}
		return dto.PayRequestResponse{}, err
	}
	if contract.EffectiveStatus(s.now()) != models.ContractStatusActive {
		return dto.PayRequestResponse{}, ErrContractNotAccepting
	}

	request := models.PayRequest{
		DistrictID: districtID,
		ContractID: contract.ID,
		EmployeeID: payload.EmployeeID,
		Amount:     payload.Amount,
		Hours:      payload.Hours,
		WorkDate:   workDate,
		Status:     models.RequestStatusPending,
	}
	event := models.Event{
		DistrictID: districtID,
		EntityType: models.EntityTypeRequest,
		EventType:  models.EventTypeCreated,
		ToStatus:   string(models.RequestStatusPending),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Metadata: datatypes.JSONMap{
			"contract_id": contract.ID,
			"amount":      payload.Amount,
			"hours":       payload.Hours,
		},
	}

	if err := s.repo.CreateWithEvent(ctx, &request, &event); err != nil {
		s.logger.Error().Err(err).Uint("district_id", districtID).Msg("failed to create pay request")
		return dto.PayRequestResponse{}, err
	}
	observability.EventsAppended().WithLabelValues(event.EntityType, event.EventType).Inc()
	s.publisher.Publish(ctx, event)

	return dto.NewPayRequestResponse(request), nil
}

func (s *PayRequestService) Get(ctx context.Context, districtID, requestID uint) (dto.PayRequestResponse, error) {
	request, err := s.repo.GetByID(ctx, districtID, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PayRequestResponse{}, ErrRequestNotFound
		}
		return dto.PayRequestResponse{}, err
	}
	return dto.NewPayRequestResponse(request), nil
}

func (s *PayRequestService) List(ctx context.Context, districtID uint, query dto.PayRequestListRequest) (dto.PayRequestListResponse, error) {
	filter := repository.PayRequestFilter{
		Status:   models.RequestStatus(query.Status),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" && !filter.Status.Valid() {
		return dto.PayRequestListResponse{}, ErrUnknownRequestStatus
	}
	if query.ContractID != 0 {
		filter.ContractID = &query.ContractID
	}
	if query.EmployeeID != 0 {
		filter.EmployeeID = &query.EmployeeID
	}

	requests, total, err := s.repo.List(ctx, districtID, filter)
	if err != nil {
		return dto.PayRequestListResponse{}, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = repository.DefaultPageSize
	}
	return dto.PayRequestListResponse{
		Requests: dto.NewPayRequestResponseSlice(requests),
		Pagination: dto.PaginationMeta{
			Page:       maxInt(filter.Page, 1),
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}, nil
}

// Approve moves a pending request to approved.
func (s *PayRequestService) Approve(ctx context.Context, districtID, requestID uint, actor Actor) (dto.PayRequestResponse, error) {
	return s.transition(ctx, districtID, requestID, actor, models.RequestStatusApproved, models.EventTypeApproved, nil)
}

// Reject moves a pending request to rejected. The reason is mandatory and
// survives on the event as audit metadata; markup is stripped before the
// emptiness check, so a reason made only of tags counts as missing.
func (s *PayRequestService) Reject(ctx context.Context, districtID, requestID uint, actor Actor, payload dto.PayRequestRejectRequest) (dto.PayRequestResponse, error) {
	reason := strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	if reason == "" {
		return dto.PayRequestResponse{}, ErrReasonRequired
	}

	return s.transition(ctx, districtID, requestID, actor, models.RequestStatusRejected, models.EventTypeRejected, datatypes.JSONMap{
		"rejection_reason": reason,
	})
}

// MarkPaid moves an approved request to paid.
func (s *PayRequestService) MarkPaid(ctx context.Context, districtID, requestID uint, actor Actor) (dto.PayRequestResponse, error) {
	return s.transition(ctx, districtID, requestID, actor, models.RequestStatusPaid, models.EventTypePaid, nil)
}

func (s *PayRequestService) transition(ctx context.Context, districtID, requestID uint, actor Actor, target models.RequestStatus, eventType string, metadata datatypes.JSONMap) (dto.PayRequestResponse, error) {
	request, err := s.repo.GetByID(ctx, districtID, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PayRequestResponse{}, ErrRequestNotFound
		}
		return dto.PayRequestResponse{}, err
	}

	from := request.Status
	if !from.CanTransitionTo(target) {
		return dto.PayRequestResponse{}, &InvalidTransitionError{
			EntityType: models.EntityTypeRequest,
			From:       string(from),
			To:         string(target),
		}
	}

	request.Status = target
	if reason, ok := metadata["rejection_reason"].(string); ok {
		request.RejectionReason = reason
	}
	event := models.Event{
		DistrictID: districtID,
		EntityType: models.EntityTypeRequest,
		EntityID:   request.ID,
		EventType:  eventType,
		FromStatus: string(from),
		ToStatus:   string(target),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Metadata:   metadata,
	}

	if err := s.repo.UpdateStatusWithEvent(ctx, &request, &event); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PayRequestResponse{}, ErrRequestNotFound
		}
		s.logger.Error().Err(err).Uint("request_id", requestID).Str("to_status", string(target)).Msg("failed to transition pay request")
		return dto.PayRequestResponse{}, err
	}
	observability.EventsAppended().WithLabelValues(event.EntityType, event.EventType).Inc()
	s.publisher.Publish(ctx, event)

	return dto.NewPayRequestResponse(request), nil
}
