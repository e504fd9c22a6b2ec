// Package mapper projects stored entities into transport-facing shapes.
// Functions here never touch the store and never mutate their inputs.
package mapper

import (
	"sort"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketSummary omits the description and comments.
func TicketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:        ticket.ID,
		Title:     ticket.Title,
		Status:    ticket.Status,
		Priority:  ticket.Priority,
		CreatedAt: ticket.CreatedAt,
	}
}

// TicketSummaries maps a slice, preserving order.
func TicketSummaries(tickets []domain.Ticket) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, TicketSummary(&tickets[i]))
	}
	return items
}

// TicketDetail includes the comments, most recent first.
func TicketDetail(ticket *domain.Ticket, comments []domain.Comment) dto.TicketDetail {
	return dto.TicketDetail{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		CreatedAt:   ticket.CreatedAt,
		Comments:    CommentViews(comments),
	}
}

// CommentView projects a single comment.
func CommentView(comment *domain.Comment) dto.CommentView {
	return dto.CommentView{
		ID:        comment.ID,
		Text:      comment.Text,
		Author:    comment.Author,
		CreatedAt: comment.CreatedAt,
	}
}

// CommentViews orders by created time descending. Equal timestamps fall back
// to the higher id first, which is the later insert.
func CommentViews(comments []domain.Comment) []dto.CommentView {
	ordered := make([]domain.Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})

	views := make([]dto.CommentView, 0, len(ordered))
	for i := range ordered {
		views = append(views, CommentView(&ordered[i]))
	}
	return views
}
