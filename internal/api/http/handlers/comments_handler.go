package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/dispatch"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// CommentsHandler exposes the comment endpoints.
type CommentsHandler struct {
	ops dispatch.Handlers
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(ops dispatch.Handlers) *CommentsHandler {
	return &CommentsHandler{ops: ops}
}

// CreateComment POST /api/tickets/:id/comments.
func (h *CommentsHandler) CreateComment(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	id, err := h.ops.CreateComment(c.UserContext(), service.CreateCommentCommand{
		TicketID: ticketID,
		Text:     req.Text,
		Author:   req.Author,
	})
	var refErr *domain.ReferentialError
	if errors.As(err, &refErr) {
		return apperrors.NewReferentialError(refErr, map[string]any{"ticket_id": refErr.TicketID})
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("comment created", fiber.Map{"id": id}))
}

// ListComments GET /api/tickets/:id/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.ops.ListCommentsByTicket(c.UserContext(), service.ListCommentsByTicketQuery{TicketID: ticketID})
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("comments retrieved", items))
}

// DeleteComment DELETE /api/comments/:id.
func (h *CommentsHandler) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.ops.DeleteComment(c.UserContext(), service.DeleteCommentCommand{ID: id})
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("comment", map[string]any{"id": id})
	}
	return c.JSON(dto.OK("comment deleted", fiber.Map{"id": id}))
}
