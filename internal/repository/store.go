package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ErrNotFound is returned by lookups when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Create stores a ticket and sets its ID.
	Create(ctx context.Context, ticket *domain.Ticket) error
	// GetByID returns ErrNotFound when the ticket does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// GetWithComments reads a ticket and its comments, newest first, from one
	// consistent snapshot. It returns ErrNotFound when the ticket does not exist.
	GetWithComments(ctx context.Context, id int64) (*domain.Ticket, []domain.Comment, error)
	// List returns every ticket. No ordering is guaranteed.
	List(ctx context.Context) ([]domain.Ticket, error)
	// Update applies changes atomically and reports whether the ticket existed.
	Update(ctx context.Context, id int64, changes domain.TicketChanges) (bool, error)
	// Delete removes the ticket together with all of its comments as one unit.
	Delete(ctx context.Context, id int64) (bool, error)
}

// CommentRepository manages ticket comments.
type CommentRepository interface {
	// Create stores a comment and sets its ID. It fails with *domain.ReferentialError
	// when the owning ticket does not exist.
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
	// Delete removes one comment and returns the id of the ticket that owned it.
	Delete(ctx context.Context, id int64) (ticketID int64, deleted bool, err error)
}

// Store is the entity store shared by every handler.
type Store interface {
	Tickets() TicketRepository
	Comments() CommentRepository
}
