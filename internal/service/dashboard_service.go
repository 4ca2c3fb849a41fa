package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mesaview-usd/extrapay-api/internal/dto"
	"github.com/mesaview-usd/extrapay-api/internal/models"
	"github.com/mesaview-usd/extrapay-api/internal/repository"
)

// Per-row storage estimates, tuned against production table statistics.
const (
	contractRowBytes   = 512
	payRequestRowBytes = 384
	eventRowBytes      = 448
)

var dashboardTracer = otel.Tracer("github.com/mesaview-usd/extrapay-api/internal/service/dashboard")

// DashboardService aggregates per-district counts and amounts. Responses
// are cached in Redis; a cache outage degrades to direct reads.
type DashboardService struct {
	contracts repository.ContractRepository
	requests  repository.PayRequestRepository
	events    repository.EventRepository
	employees repository.EmployeeRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewDashboardService(contracts repository.ContractRepository, requests repository.PayRequestRepository, events repository.EventRepository, employees repository.EmployeeRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{
		contracts: contracts,
		requests:  requests,
		events:    events,
		employees: employees,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "dashboard_service").Logger(),
		now:       time.Now,
	}
}

func dashboardCacheKey(districtID uint) string {
	return fmt.Sprintf("dashboard:district:%d", districtID)
}

func (s *DashboardService) GetDashboard(ctx context.Context, districtID uint) (dto.DistrictDashboardResponse, error) {
	ctx, span := dashboardTracer.Start(ctx, "dashboard.aggregate")
	defer span.End()
	span.SetAttributes(attribute.Int64("district.id", int64(districtID)))

	key := dashboardCacheKey(districtID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var response dto.DistrictDashboardResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Uint("district_id", districtID).Msg("dashboard cache read failed")
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	response, err := s.buildResponse(ctx, districtID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.DistrictDashboardResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Uint("district_id", districtID).Msg("dashboard cache write failed")
			}
		}
	}

	return response, nil
}

func (s *DashboardService) buildResponse(ctx context.Context, districtID uint) (dto.DistrictDashboardResponse, error) {
	employees, err := s.employees.Count(ctx, districtID)
	if err != nil {
		return dto.DistrictDashboardResponse{}, err
	}

	contractCounts, err := s.contracts.CountByStatus(ctx, districtID)
	if err != nil {
		return dto.DistrictDashboardResponse{}, err
	}
	requestCounts, err := s.requests.CountByStatus(ctx, districtID)
	if err != nil {
		return dto.DistrictDashboardResponse{}, err
	}

	approvedAmount, err := s.requests.SumAmountByStatus(ctx, districtID, models.RequestStatusApproved)
	if err != nil {
		return dto.DistrictDashboardResponse{}, err
	}
	paidAmount, err := s.requests.SumAmountByStatus(ctx, districtID, models.RequestStatusPaid)
	if err != nil {
		return dto.DistrictDashboardResponse{}, err
	}

	eventRows, err := s.events.Count(ctx, districtID)
	if err != nil {
		return dto.DistrictDashboardResponse{}, err
	}

	contractsByStatus := make(map[string]int64, len(contractCounts))
	var contractRows int64
	for status, count := range contractCounts {
		contractsByStatus[string(status)] = count
		contractRows += count
	}
	requestsByStatus := make(map[string]int64, len(requestCounts))
	var requestRows int64
	for status, count := range requestCounts {
		requestsByStatus[string(status)] = count
		requestRows += count
	}

	return dto.DistrictDashboardResponse{
		DistrictID:          districtID,
		Employees:           employees,
		ContractsByStatus:   contractsByStatus,
		RequestsByStatus:    requestsByStatus,
		TotalApprovedAmount: approvedAmount,
		TotalPaidAmount:     paidAmount,
		Storage: dto.StorageEstimate{
			ContractRows:   contractRows,
			RequestRows:    requestRows,
			EventRows:      eventRows,
			EstimatedBytes: contractRows*contractRowBytes + requestRows*payRequestRowBytes + eventRows*eventRowBytes,
		},
		GeneratedAt: s.now().UTC(),
	}, nil
}
