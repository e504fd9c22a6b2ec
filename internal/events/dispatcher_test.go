package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	t.Parallel()
	d := NewInMemoryDispatcher()

	var calls []string
	d.Subscribe(EventTicketDeleted, func(_ context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventTicketDeleted, func(_ context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketDeleted, TicketID: 1})
	assert.EqualError(t, err, "first failed")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventCommentAdded}))
}
