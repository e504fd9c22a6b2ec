package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventCommentAdded        EventType = "comment_added"
	EventCommentDeleted      EventType = "comment_deleted"
)

// AllEventTypes lists every event the service emits.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketStatusChanged,
	EventTicketDeleted,
	EventCommentAdded,
	EventCommentDeleted,
}

// Event represents a domain event emitted after a successful store write.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Title    string                `json:"title"`
	Status   domain.TicketStatus   `json:"status"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	NewStatus domain.TicketStatus `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   int64  `json:"comment_id"`
	Author      string `json:"author"`
	TextPreview string `json:"text_preview"`
}

// CommentDeletedPayload payload. The event's TicketID names the owning ticket.
type CommentDeletedPayload struct {
	CommentID int64 `json:"comment_id"`
}
