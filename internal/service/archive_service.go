package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mesaview-usd/extrapay-api/internal/dto"
	"github.com/mesaview-usd/extrapay-api/internal/observability"
	"github.com/mesaview-usd/extrapay-api/internal/repository"
)

// DefaultRetentionDays applies when an archive run does not specify one.
const DefaultRetentionDays = 365

// ArchiveService stamps terminal pay requests older than the retention
// window as archived. Rows are never deleted; archived requests drop out
// of default listings but stay replayable through their events.
type ArchiveService struct {
	requests  repository.PayRequestRepository
	validator *validator.Validate
	cache     *redis.Client
	retention int
	logger    zerolog.Logger
	now       func() time.Time
}

// NewArchiveService builds the archiver. defaultRetention is the configured
// retention window in days, used when a run does not carry one.
func NewArchiveService(requests repository.PayRequestRepository, v *validator.Validate, cache *redis.Client, defaultRetention int, logger zerolog.Logger) *ArchiveService {
	if defaultRetention <= 0 {
		defaultRetention = DefaultRetentionDays
	}

	return &ArchiveService{
		requests:  requests,
		validator: v,
		cache:     cache,
		retention: defaultRetention,
		logger:    logger.With().Str("component", "archive_service").Logger(),
		now:       time.Now,
	}
}

func (s *ArchiveService) Run(ctx context.Context, districtID uint, actor Actor, payload dto.ArchiveRunRequest) (dto.ArchiveRunResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ArchiveRunResponse{}, err
	}

	retention := payload.RetentionDays
	if retention <= 0 {
		retention = s.retention
	}

	ranAt := s.now().UTC()
	cutoff := ranAt.AddDate(0, 0, -retention)

	scanned, archived, err := s.requests.ArchiveTerminalBefore(ctx, districtID, cutoff, ranAt)
	if err != nil {
		s.logger.Error().Err(err).Uint("district_id", districtID).Msg("archive run failed")
		return dto.ArchiveRunResponse{}, err
	}

	s.logger.Info().
		Uint("district_id", districtID).
		Uint("actor_id", actor.ID).
		Int("retention_days", retention).
		Int64("scanned", scanned).
		Int64("archived", archived).
		Msg("archive run completed")

	if archived > 0 {
		observability.RequestsArchived().WithLabelValues(strconv.FormatUint(uint64(districtID), 10)).Add(float64(archived))
	}

	if archived > 0 && s.cache != nil {
		if err := s.cache.Del(ctx, dashboardCacheKey(districtID)).Err(); err != nil {
			s.logger.Warn().Err(err).Uint("district_id", districtID).Msg("failed to invalidate dashboard cache")
		}
	}

	return dto.ArchiveRunResponse{
		DistrictID:    districtID,
		RetentionDays: retention,
		Cutoff:        cutoff,
		Scanned:       scanned,
		Archived:      archived,
		RanAt:         ranAt,
	}, nil
}
