package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mesaview-usd/extrapay-api/internal/dto"
	"github.com/mesaview-usd/extrapay-api/internal/service"
	"github.com/mesaview-usd/extrapay-api/internal/utils"
)

// DashboardService aggregates district-level figures.
type DashboardService interface {
	GetDashboard(ctx context.Context, districtID uint) (dto.DistrictDashboardResponse, error)
}

// ArchiveService runs retention sweeps over terminal pay requests.
type ArchiveService interface {
	Run(ctx context.Context, districtID uint, actor service.Actor, payload dto.ArchiveRunRequest) (dto.ArchiveRunResponse, error)
}

// DashboardHandler wires the dashboard and archive endpoints.
type DashboardHandler struct {
	dashboard DashboardService
	archive   ArchiveService
	logger    zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard DashboardService, archive ArchiveService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		archive:   archive,
		logger:    logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the endpoints to the district group.
func (h *DashboardHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/dashboard", adminOnly, h.getDashboard)
	router.Post("/archive/run", adminOnly, h.runArchive)
}

func (h *DashboardHandler) getDashboard(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	dashboard, err := h.dashboard.GetDashboard(c.Context(), districtID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	if dashboard.CacheHit {
		c.Set("X-Cache-Hit", "true")
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *DashboardHandler) runArchive(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.ArchiveRunRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	result, err := h.archive.Run(c.Context(), districtID, actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrInvalidDate) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "archive run completed", result)
}
