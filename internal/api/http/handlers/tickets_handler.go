package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/dispatch"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket endpoints.
type TicketsHandler struct {
	ops dispatch.Handlers
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ops dispatch.Handlers) *TicketsHandler {
	return &TicketsHandler{ops: ops}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority, err := req.Validate()
	if err != nil {
		return err
	}

	id, err := h.ops.CreateTicket(c.UserContext(), service.CreateTicketCommand{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("ticket created", fiber.Map{"id": id}))
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var query dto.TicketListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	items, err := h.ops.ListTickets(c.UserContext(), service.ListTicketsQuery{
		Status:   query.Status,
		Priority: query.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("tickets retrieved", items))
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.ops.GetTicketByID(c.UserContext(), service.GetTicketByIDQuery{ID: id})
	if err != nil {
		return err
	}
	if detail == nil {
		return ticketNotFound(id)
	}
	return c.JSON(dto.OK("ticket retrieved", detail))
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, priority, err := req.Validate()
	if err != nil {
		return err
	}

	ok, err := h.ops.UpdateTicket(c.UserContext(), service.UpdateTicketCommand{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ticketNotFound(id)
	}
	return c.JSON(dto.OK("ticket updated", fiber.Map{"id": id}))
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, err := req.Validate()
	if err != nil {
		return err
	}

	ok, err := h.ops.UpdateTicketStatus(c.UserContext(), service.UpdateTicketStatusCommand{ID: id, Status: status})
	if err != nil {
		return err
	}
	if !ok {
		return ticketNotFound(id)
	}
	return c.JSON(dto.OK("ticket status updated", fiber.Map{"id": id, "status": status}))
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.ops.DeleteTicket(c.UserContext(), service.DeleteTicketCommand{ID: id})
	if err != nil {
		return err
	}
	if !ok {
		return ticketNotFound(id)
	}
	return c.JSON(dto.OK("ticket deleted", fiber.Map{"id": id}))
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	raw := strings.TrimSpace(c.Params(param))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{param: raw})
	}
	return id, nil
}

func ticketNotFound(id int64) error {
	return apperrors.NewNotFound("ticket", map[string]any{"id": id})
}
