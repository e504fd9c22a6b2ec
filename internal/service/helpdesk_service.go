package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/mapper"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// HelpdeskService implements one handler per ticket/comment command or query.
// Each call is an independent read-modify-write against the store; nothing is
// cached between calls.
type HelpdeskService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// HelpdeskDependencies bundles collaborators for the service.
type HelpdeskDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewHelpdeskService constructs the service.
func NewHelpdeskService(deps HelpdeskDependencies) *HelpdeskService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &HelpdeskService{
		tickets:    deps.Store.Tickets(),
		comments:   deps.Store.Comments(),
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CreateTicketCommand creates a ticket. An empty priority means Medium.
type CreateTicketCommand struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// UpdateTicketCommand replaces the mutable fields of a ticket.
type UpdateTicketCommand struct {
	ID          int64
	Title       string
	Description string
	Status      domain.TicketStatus
	Priority    domain.TicketPriority
}

// UpdateTicketStatusCommand changes only the status.
type UpdateTicketStatusCommand struct {
	ID     int64
	Status domain.TicketStatus
}

// DeleteTicketCommand deletes a ticket and its comments.
type DeleteTicketCommand struct {
	ID int64
}

// ListTicketsQuery filters are optional and compared case-insensitively.
type ListTicketsQuery struct {
	Status   string
	Priority string
}

// GetTicketByIDQuery fetches a ticket with its comments.
type GetTicketByIDQuery struct {
	ID int64
}

// CreateCommentCommand appends a comment to an existing ticket.
type CreateCommentCommand struct {
	TicketID int64
	Text     string
	Author   string
}

// ListCommentsByTicketQuery lists a ticket's comments.
type ListCommentsByTicketQuery struct {
	TicketID int64
}

// DeleteCommentCommand deletes one comment.
type DeleteCommentCommand struct {
	ID int64
}

// CreateTicket stores a new Open ticket and returns its id.
func (s *HelpdeskService) CreateTicket(ctx context.Context, cmd CreateTicketCommand) (int64, error) {
	priority := cmd.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return 0, invalidEnum("priority", string(priority))
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(cmd.Title),
		Description: strings.TrimSpace(cmd.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CreatedAt:   s.now(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return 0, fmt.Errorf("create ticket: %w", err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
		},
	})
	return ticket.ID, nil
}

// UpdateTicket overwrites title, description, status and priority. Any
// enumerated status is accepted regardless of the current one. It returns
// false when the ticket does not exist.
func (s *HelpdeskService) UpdateTicket(ctx context.Context, cmd UpdateTicketCommand) (bool, error) {
	if !cmd.Status.Valid() {
		return false, invalidEnum("status", string(cmd.Status))
	}
	if !cmd.Priority.Valid() {
		return false, invalidEnum("priority", string(cmd.Priority))
	}

	title := strings.TrimSpace(cmd.Title)
	description := strings.TrimSpace(cmd.Description)
	ok, err := s.tickets.Update(ctx, cmd.ID, domain.TicketChanges{
		Title:       &title,
		Description: &description,
		Status:      &cmd.Status,
		Priority:    &cmd.Priority,
	})
	if err != nil {
		return false, fmt.Errorf("update ticket %d: %w", cmd.ID, err)
	}
	if ok {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: cmd.ID,
			Payload: events.TicketUpdatedPayload{
				Title:    title,
				Status:   cmd.Status,
				Priority: cmd.Priority,
			},
		})
	}
	return ok, nil
}

// UpdateTicketStatus writes only the status field.
func (s *HelpdeskService) UpdateTicketStatus(ctx context.Context, cmd UpdateTicketStatusCommand) (bool, error) {
	if !cmd.Status.Valid() {
		return false, invalidEnum("status", string(cmd.Status))
	}
	ok, err := s.tickets.Update(ctx, cmd.ID, domain.TicketChanges{Status: &cmd.Status})
	if err != nil {
		return false, fmt.Errorf("update ticket %d status: %w", cmd.ID, err)
	}
	if ok {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: cmd.ID,
			Payload:  events.TicketStatusChangedPayload{NewStatus: cmd.Status},
		})
	}
	return ok, nil
}

// DeleteTicket removes the ticket and all of its comments.
func (s *HelpdeskService) DeleteTicket(ctx context.Context, cmd DeleteTicketCommand) (bool, error) {
	ok, err := s.tickets.Delete(ctx, cmd.ID)
	if err != nil {
		return false, fmt.Errorf("delete ticket %d: %w", cmd.ID, err)
	}
	if ok {
		s.publishEvent(ctx, events.Event{Type: events.EventTicketDeleted, TicketID: cmd.ID})
	}
	return ok, nil
}

// ListTickets returns summaries in creation order, filtered after fetch.
func (s *HelpdeskService) ListTickets(ctx context.Context, query ListTicketsQuery) ([]dto.TicketSummary, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	status := strings.TrimSpace(query.Status)
	priority := strings.TrimSpace(query.Priority)
	filtered := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if status != "" && !strings.EqualFold(string(ticket.Status), status) {
			continue
		}
		if priority != "" && !strings.EqualFold(string(ticket.Priority), priority) {
			continue
		}
		filtered = append(filtered, ticket)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return mapper.TicketSummaries(filtered), nil
}

// GetTicketByID returns nil without an error when the ticket does not exist.
func (s *HelpdeskService) GetTicketByID(ctx context.Context, query GetTicketByIDQuery) (*dto.TicketDetail, error) {
	ticket, comments, err := s.tickets.GetWithComments(ctx, query.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %d: %w", query.ID, err)
	}
	detail := mapper.TicketDetail(ticket, comments)
	return &detail, nil
}

// CreateComment fails with *domain.ReferentialError when the ticket is absent.
func (s *HelpdeskService) CreateComment(ctx context.Context, cmd CreateCommentCommand) (int64, error) {
	comment := &domain.Comment{
		TicketID:  cmd.TicketID,
		Text:      strings.TrimSpace(cmd.Text),
		Author:    strings.TrimSpace(cmd.Author),
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, domain.ErrReferential) {
			return 0, err
		}
		return 0, fmt.Errorf("create comment: %w", err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: comment.TicketID,
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			Author:      comment.Author,
			TextPreview: stringPreview(comment.Text, 120),
		},
	})
	return comment.ID, nil
}

// ListCommentsByTicket does not check that the ticket exists; an unknown
// ticket simply has no comments.
func (s *HelpdeskService) ListCommentsByTicket(ctx context.Context, query ListCommentsByTicketQuery) ([]dto.CommentView, error) {
	comments, err := s.comments.ListByTicket(ctx, query.TicketID)
	if err != nil {
		return nil, fmt.Errorf("list comments for ticket %d: %w", query.TicketID, err)
	}
	return mapper.CommentViews(comments), nil
}

// DeleteComment returns false when the comment does not exist.
func (s *HelpdeskService) DeleteComment(ctx context.Context, cmd DeleteCommentCommand) (bool, error) {
	ticketID, ok, err := s.comments.Delete(ctx, cmd.ID)
	if err != nil {
		return false, fmt.Errorf("delete comment %d: %w", cmd.ID, err)
	}
	if ok {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventCommentDeleted,
			TicketID: ticketID,
			Payload:  events.CommentDeletedPayload{CommentID: cmd.ID},
		})
	}
	return ok, nil
}

func invalidEnum(field, value string) error {
	return apperrors.NewValidationError(fmt.Sprintf("invalid %s", field), map[string]any{field: value})
}

func (s *HelpdeskService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, limit int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
