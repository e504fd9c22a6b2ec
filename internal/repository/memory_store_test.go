package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func seedTicket(t *testing.T, store Store, title string) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Title:       title,
		Description: "description long enough",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.Tickets().Create(context.Background(), ticket))
	return ticket
}

func TestMemoryStoreAssignsSequentialIDs(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	first := seedTicket(t, store, "first")
	second := seedTicket(t, store, "second")

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	tickets, err := store.Tickets().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestMemoryStoreUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	ticket := seedTicket(t, store, "printer")

	title := "printer on floor 2"
	status := domain.TicketStatusResolved
	ok, err := store.Tickets().Update(ctx, ticket.ID, domain.TicketChanges{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, domain.TicketStatusResolved, got.Status)
	assert.Equal(t, domain.TicketPriorityMedium, got.Priority)
	assert.True(t, ticket.CreatedAt.Equal(got.CreatedAt))

	ok, err = store.Tickets().Update(ctx, 404, domain.TicketChanges{Title: &title})
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = store.Tickets().GetByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCascadingDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	doomed := seedTicket(t, store, "doomed")
	kept := seedTicket(t, store, "kept")

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Comments().Create(ctx, &domain.Comment{TicketID: doomed.ID, Text: "x", Author: "a", CreatedAt: time.Now()}))
	}
	survivor := &domain.Comment{TicketID: kept.ID, Text: "y", Author: "b", CreatedAt: time.Now()}
	require.NoError(t, store.Comments().Create(ctx, survivor))

	ok, err := store.Tickets().Delete(ctx, doomed.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	comments, err := store.Comments().ListByTicket(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	_, err = store.Tickets().GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Comments().GetByID(ctx, survivor.ID)
	assert.NoError(t, err)

	ok, err = store.Tickets().Delete(ctx, doomed.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreCommentRequiresTicket(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	err := store.Comments().Create(context.Background(), &domain.Comment{TicketID: 9, Text: "x", Author: "a"})
	assert.ErrorIs(t, err, domain.ErrReferential)

	comments, err := store.Comments().ListByTicket(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestMemoryStoreCommentsNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	ticket := seedTicket(t, store, "ordering")
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	a := &domain.Comment{TicketID: ticket.ID, Text: "A", Author: "Alice", CreatedAt: base}
	b := &domain.Comment{TicketID: ticket.ID, Text: "B", Author: "Bob", CreatedAt: base.Add(time.Second)}
	c := &domain.Comment{TicketID: ticket.ID, Text: "C", Author: "Carol", CreatedAt: base.Add(time.Second)}
	for _, comment := range []*domain.Comment{a, b, c} {
		require.NoError(t, store.Comments().Create(ctx, comment))
	}

	comments, err := store.Comments().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{comments[0].Text, comments[1].Text, comments[2].Text})
}

func TestMemoryStoreDeleteCommentOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	ticket := seedTicket(t, store, "once")
	comment := &domain.Comment{TicketID: ticket.ID, Text: "x", Author: "a", CreatedAt: time.Now()}
	require.NoError(t, store.Comments().Create(ctx, comment))

	ticketID, ok, err := store.Comments().Delete(ctx, comment.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ticket.ID, ticketID)

	_, ok, err = store.Comments().Delete(ctx, comment.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreGetWithComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	ticket := seedTicket(t, store, "detail")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		require.NoError(t, store.Comments().Create(ctx, &domain.Comment{TicketID: ticket.ID, Text: "x", Author: "a", CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	got, comments, err := store.Tickets().GetWithComments(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
	require.Len(t, comments, 2)
	assert.True(t, comments[0].CreatedAt.After(comments[1].CreatedAt))

	_, _, err = store.Tickets().GetWithComments(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDetailNeverSeesHalfDeletedTicket(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		store := NewMemoryStore()
		ticket := seedTicket(t, store, "snapshot")
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Comments().Create(ctx, &domain.Comment{TicketID: ticket.ID, Text: "x", Author: "a", CreatedAt: time.Now()}))
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Tickets().Delete(ctx, ticket.ID)
		}()
		for i := 0; i < 20; i++ {
			got, comments, err := store.Tickets().GetWithComments(ctx, ticket.ID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Len(t, comments, 3)
		}
		wg.Wait()
	}
}

func TestMemoryStoreCancelledContextWritesNothing(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	ticket := seedTicket(t, store, "cancel")
	require.NoError(t, store.Comments().Create(context.Background(), &domain.Comment{TicketID: ticket.ID, Text: "x", Author: "a"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := store.Tickets().Delete(ctx, ticket.ID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)

	comments, err := store.Comments().ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestMemoryStoreConcurrentCommentsAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	ticket := seedTicket(t, store, "race")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Either lands before the delete or is rejected after it.
			_ = store.Comments().Create(ctx, &domain.Comment{TicketID: ticket.ID, Text: "x", Author: "a", CreatedAt: time.Now()})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = store.Tickets().Delete(ctx, ticket.ID)
	}()
	wg.Wait()

	_, _ = store.Tickets().Delete(ctx, ticket.ID)
	comments, err := store.Comments().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
