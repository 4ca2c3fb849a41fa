package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/dto"
	"github.com/mesaview-usd/extrapay-api/internal/models"
	"github.com/mesaview-usd/extrapay-api/internal/repository"
)

var ErrUnknownEntityType = errors.New("unknown entity type")

var timelineTracer = otel.Tracer("github.com/mesaview-usd/extrapay-api/internal/service/timeline")

// TimelineService reads the append-only event history of a single entity
// and replays it into a derived status for cross-checking.
type TimelineService struct {
	events    repository.EventRepository
	contracts repository.ContractRepository
	requests  repository.PayRequestRepository
	logger    zerolog.Logger
}

func NewTimelineService(events repository.EventRepository, contracts repository.ContractRepository, requests repository.PayRequestRepository, logger zerolog.Logger) *TimelineService {
	return &TimelineService{
		events:    events,
		contracts: contracts,
		requests:  requests,
		logger:    logger.With().Str("component", "timeline_service").Logger(),
	}
}

func (s *TimelineService) GetTimeline(ctx context.Context, districtID uint, entityType string, entityID uint) (dto.TimelineResponse, error) {
	ctx, span := timelineTracer.Start(ctx, "timeline.read")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("district.id", int64(districtID)),
		attribute.String("entity.type", entityType),
		attribute.Int64("entity.id", int64(entityID)),
	)

	if err := s.verifyEntity(ctx, districtID, entityType, entityID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.TimelineResponse{}, err
	}

	events, err := s.events.ListByEntity(ctx, districtID, entityType, entityID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().Err(err).Str("entity_type", entityType).Uint("entity_id", entityID).Msg("failed to read timeline")
		return dto.TimelineResponse{}, err
	}
	span.SetAttributes(attribute.Int("event.count", len(events)))

	return dto.NewTimelineResponse(entityType, entityID, events), nil
}

// verifyEntity confirms the entity exists inside the district before any
// events are read, so cross-tenant probes see not-found.
func (s *TimelineService) verifyEntity(ctx context.Context, districtID uint, entityType string, entityID uint) error {
	switch entityType {
	case models.EntityTypeContract:
		if _, err := s.contracts.GetByID(ctx, districtID, entityID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}
	case models.EntityTypeRequest:
		if _, err := s.requests.GetByID(ctx, districtID, entityID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
	default:
		return ErrUnknownEntityType
	}
	return nil
}
