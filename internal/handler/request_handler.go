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

// PayRequestService is the surface the pay request handler depends on.
type PayRequestService interface {
	Create(ctx context.Context, districtID uint, actor service.Actor, payload dto.PayRequestCreateRequest) (dto.PayRequestResponse, error)
	Get(ctx context.Context, districtID, requestID uint) (dto.PayRequestResponse, error)
	List(ctx context.Context, districtID uint, query dto.PayRequestListRequest) (dto.PayRequestListResponse, error)
	Approve(ctx context.Context, districtID, requestID uint, actor service.Actor) (dto.PayRequestResponse, error)
	Reject(ctx context.Context, districtID, requestID uint, actor service.Actor, payload dto.PayRequestRejectRequest) (dto.PayRequestResponse, error)
	MarkPaid(ctx context.Context, districtID, requestID uint, actor service.Actor) (dto.PayRequestResponse, error)
}

// PayRequestHandler wires pay request HTTP routes.
type PayRequestHandler struct {
	service  PayRequestService
	timeline TimelineService
	logger   zerolog.Logger
}

// NewPayRequestHandler constructs the handler.
func NewPayRequestHandler(service PayRequestService, timeline TimelineService, logger zerolog.Logger) *PayRequestHandler {
	return &PayRequestHandler{
		service:  service,
		timeline: timeline,
		logger:   logger.With().Str("component", "pay_request_handler").Logger(),
	}
}

// Register attaches pay request endpoints to the router group. Approval and
// rejection are reserved for administrators, payout confirmation for payroll.
func (h *PayRequestHandler) Register(router fiber.Router, adminOnly, payrollOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/approve", adminOnly, h.approve)
	router.Post("/:id/reject", adminOnly, h.reject)
	router.Post("/:id/paid", payrollOnly, h.markPaid)
	router.Get("/:id/timeline", h.getTimeline)
}

func (h *PayRequestHandler) list(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	query := dto.PayRequestListRequest{Status: c.Query("status")}
	if query.Page, err = parseQueryInt(c, "page"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if query.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}
	if contractID, err := parseQueryInt(c, "contract_id"); err != nil || contractID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid contract_id")
	} else {
		query.ContractID = uint(contractID)
	}
	if employeeID, err := parseQueryInt(c, "employee_id"); err != nil || employeeID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid employee_id")
	} else {
		query.EmployeeID = uint(employeeID)
	}

	requests, err := h.service.List(c.Context(), districtID, query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "pay requests retrieved", requests)
}

func (h *PayRequestHandler) create(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PayRequestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.Create(c.Context(), districtID, actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "pay request created", request)
}

func (h *PayRequestHandler) get(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	request, err := h.service.Get(c.Context(), districtID, requestID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "pay request retrieved", request)
}

func (h *PayRequestHandler) approve(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	request, err := h.service.Approve(c.Context(), districtID, requestID, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "pay request approved", request)
}

func (h *PayRequestHandler) reject(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PayRequestRejectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.Reject(c.Context(), districtID, requestID, actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "pay request rejected", request)
}

func (h *PayRequestHandler) markPaid(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	request, err := h.service.MarkPaid(c.Context(), districtID, requestID, actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "pay request marked paid", request)
}

func (h *PayRequestHandler) getTimeline(c *fiber.Ctx) error {
	districtID, err := parseUintParam(c, "districtID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	timeline, err := h.timeline.GetTimeline(c.Context(), districtID, models.EntityTypeRequest, requestID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "timeline retrieved", timeline)
}

func (h *PayRequestHandler) handleError(c *fiber.Ctx, err error) error {
	var transitionErr *service.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "pay request not found")
	case errors.Is(err, service.ErrContractNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "contract not found")
	case errors.As(err, &transitionErr):
		return utils.SendError(c, fiber.StatusBadRequest, transitionErr.Error())
	case errors.Is(err, service.ErrUnknownRequestStatus):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown pay request status")
	case errors.Is(err, service.ErrReasonRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "rejection reason is required")
	case errors.Is(err, service.ErrContractNotAccepting):
		return utils.SendError(c, fiber.StatusBadRequest, "contract is not accepting pay requests")
	case errors.Is(err, service.ErrInvalidDate):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
