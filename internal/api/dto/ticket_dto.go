package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketSummary is the list projection of a ticket.
type TicketSummary struct {
	ID        int64                 `json:"id" yaml:"id"`
	Title     string                `json:"title" yaml:"title"`
	Status    domain.TicketStatus   `json:"status" yaml:"status"`
	Priority  domain.TicketPriority `json:"priority" yaml:"priority"`
	CreatedAt time.Time             `json:"created_at" yaml:"created_at"`
}

// TicketDetail provides full ticket info with comments, newest first.
type TicketDetail struct {
	ID          int64                 `json:"id" yaml:"id"`
	Title       string                `json:"title" yaml:"title"`
	Description string                `json:"description" yaml:"description"`
	Status      domain.TicketStatus   `json:"status" yaml:"status"`
	Priority    domain.TicketPriority `json:"priority" yaml:"priority"`
	CreatedAt   time.Time             `json:"created_at" yaml:"created_at"`
	Comments    []CommentView         `json:"comments" yaml:"comments"`
}

// CommentView represents a thread comment.
type CommentView struct {
	ID        int64     `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Author    string    `json:"author" yaml:"author"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest payload. All fields are replaced.
type UpdateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// UpdateStatusRequest payload for PATCH /api/tickets/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// TicketListQuery captures optional list filters.
type TicketListQuery struct {
	Status   string `query:"status"`
	Priority string `query:"priority"`
}
