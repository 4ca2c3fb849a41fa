package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mesaview-usd/extrapay-api/internal/dto"
	"github.com/mesaview-usd/extrapay-api/internal/models"
	"github.com/mesaview-usd/extrapay-api/internal/service"
	"github.com/mesaview-usd/extrapay-api/internal/utils"
)

// ContractService is the surface the contract handler depends on.
type ContractService interface {
	Create(ctx context.Context, districtID uint, actor service.Actor, payload dto.ContractCreateRequest) (dto.ContractResponse, error)
	Get(ctx context.Context, districtID, contractID uint) (dto.ContractResponse, error)
	List(ctx context.Context, districtID uint, query dto.ContractListRequest) (dto.ContractListResponse, error)
	UpdateStatus(ctx context.Context, districtID, contractID uint, actor service.Actor, payload dto.ContractStatusUpdateRequest) (dto.ContractResponse, error)
}

// TimelineService reads an entity's event history.
type TimelineService interface {
	GetTimeline(ctx context.Context, districtID uint, entityType string, entityID uint) (dto.TimelineResponse, error)
}

// ContractHandler wires contract HTTP routes.
type ContractHandler struct {
	service  ContractService
	timeline TimelineService
	logger   zerolog.Logger
}

// NewContractHandler constructs the handler.
func NewContractHandler(service ContractService, timeline TimelineService, logger zerolog.Logger) *ContractHandler {
	return &ContractHandler{
		service:  service,
		timeline: timeline,
		logger:   logger.With().Str("component", "contract_handler").Logger(),
	}
}

// Register attaches contract endpoints to the router group. The admin
// handler passed in guards mutating routes.
func (h *ContractHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", adminOnly, h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id/status", adminOnly, h.updateStatus)
	router.Get("/:id/timeline", h.getTimeline)
}

func (h *ContractHandler) list(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	query := dto.ContractListRequest{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if query.Page, err = parseQueryInt(c, "page"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if query.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	contracts, err := h.service.List(c.Context(), districtID, query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "contracts retrieved", contracts)
}

func (h *ContractHandler) create(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ContractCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contract, err := h.service.Create(c.Context(), districtID, actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "contract created", contract)
}

func (h *ContractHandler) get(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	contractID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	contract, err := h.service.Get(c.Context(), districtID, contractID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "contract retrieved", contract)
}

func (h *ContractHandler) updateStatus(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	contractID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ContractStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contract, err := h.service.UpdateStatus(c.Context(), districtID, contractID, actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "contract status updated", contract)
}

func (h *ContractHandler) getTimeline(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	contractID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	timeline, err := h.timeline.GetTimeline(c.Context(), districtID, models.EntityTypeContract, contractID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "timeline retrieved", timeline)
}

func (h *ContractHandler) handleError(c *fiber.Ctx, err error) error {
	var transitionErr *service.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrContractNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "contract not found")
	case errors.As(err, &transitionErr):
		return utils.SendError(c, fiber.StatusBadRequest, transitionErr.Error())
	case errors.Is(err, service.ErrUnknownContractStatus):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown contract status")
	case errors.Is(err, service.ErrInvalidDate):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
