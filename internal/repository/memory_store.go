package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// MemoryStore keeps tickets and comments in process memory. One mutex guards
// both maps, so a cascading delete is observed either completely or not at all.
type MemoryStore struct {
	mu            sync.RWMutex
	tickets       map[int64]domain.Ticket
	comments      map[int64]domain.Comment
	nextTicketID  int64
	nextCommentID int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:  make(map[int64]domain.Ticket),
		comments: make(map[int64]domain.Comment),
	}
}

func (s *MemoryStore) Tickets() TicketRepository   { return memoryTickets{s} }
func (s *MemoryStore) Comments() CommentRepository { return memoryComments{s} }

type memoryTickets struct{ s *MemoryStore }

func (r memoryTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextTicketID++
	ticket.ID = r.s.nextTicketID
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memoryTickets) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ticket, nil
}

func (r memoryTickets) GetWithComments(ctx context.Context, id int64) (*domain.Ticket, []domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	return &ticket, r.s.commentsOf(id), nil
}

func (r memoryTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(r.s.tickets))
	for _, ticket := range r.s.tickets {
		result = append(result, ticket)
	}
	return result, nil
}

func (r memoryTickets) Update(ctx context.Context, id int64, changes domain.TicketChanges) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return false, nil
	}
	changes.Apply(&ticket)
	r.s.tickets[id] = ticket
	return true, nil
}

func (r memoryTickets) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return false, nil
	}
	for commentID, comment := range r.s.comments {
		if comment.TicketID == id {
			delete(r.s.comments, commentID)
		}
	}
	delete(r.s.tickets, id)
	return true, nil
}

type memoryComments struct{ s *MemoryStore }

func (r memoryComments) Create(ctx context.Context, comment *domain.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[comment.TicketID]; !ok {
		return &domain.ReferentialError{TicketID: comment.TicketID}
	}
	r.s.nextCommentID++
	comment.ID = r.s.nextCommentID
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r memoryComments) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comment, ok := r.s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &comment, nil
}

func (r memoryComments) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.commentsOf(ticketID), nil
}

// commentsOf returns a ticket's comments newest first. Callers hold mu.
func (s *MemoryStore) commentsOf(ticketID int64) []domain.Comment {
	result := []domain.Comment{}
	for _, comment := range s.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (r memoryComments) Delete(ctx context.Context, id int64) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment, ok := r.s.comments[id]
	if !ok {
		return 0, false, nil
	}
	delete(r.s.comments, id)
	return comment.TicketID, true, nil
}
