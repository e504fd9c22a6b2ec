package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
)

func TestAuditServiceLogsDomainEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	svc := NewHelpdeskService(HelpdeskDependencies{Store: repository.NewMemoryStore(), Dispatcher: dispatcher})
	ctx := context.Background()

	id, err := svc.CreateTicket(ctx, CreateTicketCommand{Title: "Printer broken", Description: "Office printer jams on page 2"})
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, CreateCommentCommand{TicketID: id, Text: "Checked toner", Author: "Alice"})
	require.NoError(t, err)
	_, err = svc.DeleteTicket(ctx, DeleteTicketCommand{ID: id})
	require.NoError(t, err)

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 3)
	var types []string
	for _, entry := range entries {
		types = append(types, entry.ContextMap()["event_type"].(string))
	}
	assert.Equal(t, []string{"ticket_created", "comment_added", "ticket_deleted"}, types)
}

func TestAuditServiceIgnoresMissedWrites(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	svc := NewHelpdeskService(HelpdeskDependencies{Store: repository.NewMemoryStore(), Dispatcher: dispatcher})
	ok, err := svc.DeleteComment(context.Background(), DeleteCommentCommand{ID: 12})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, logs.Len())
}

func TestCommentDeletedEventNamesTicket(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	svc := NewHelpdeskService(HelpdeskDependencies{Store: repository.NewMemoryStore(), Dispatcher: dispatcher})
	ctx := context.Background()

	id, err := svc.CreateTicket(ctx, CreateTicketCommand{Title: "Printer broken", Description: "Office printer jams on page 2"})
	require.NoError(t, err)
	commentID, err := svc.CreateComment(ctx, CreateCommentCommand{TicketID: id, Text: "Checked toner", Author: "Alice"})
	require.NoError(t, err)
	ok, err := svc.DeleteComment(ctx, DeleteCommentCommand{ID: commentID})
	require.NoError(t, err)
	require.True(t, ok)

	entries := logs.FilterMessage("domain event").FilterField(zap.String("event_type", "comment_deleted")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ContextMap()["ticket_id"])
}
