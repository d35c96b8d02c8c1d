package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})
	dispatcher.Subscribe(EventTicketAssigned, func(_ context.Context, event Event) error {
		t.Fatalf("unexpected delivery: %v", event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 7})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.EqualValues(t, 7, received[0].TicketID)
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var delivered int
	dispatcher.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		return errors.New("handler down")
	})
	dispatcher.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		delivered++
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventCommentAdded})
	require.NoError(t, err)
	assert.Equal(t, 1, delivered, "one handler failing must not starve the rest")
}

func TestDispatcherNoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketUnassigned}))
}
