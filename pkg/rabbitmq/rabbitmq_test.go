package rabbitmq

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAssignsIdentity(t *testing.T) {
	event := Event{Type: MessageCreated, ActorID: 3, ChatID: 7, MessageID: 11}
	body, err := Encode(&event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.OccurredAt.IsZero())

	decoded, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, MessageCreated, decoded.Type)
	assert.Equal(t, uint(7), decoded.ChatID)
	assert.True(t, event.OccurredAt.Equal(decoded.OccurredAt))
}

func TestEncodeKeepsGivenIdentity(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	event := Event{ID: "fixed", Type: ChatCreated, OccurredAt: at}
	_, err := Encode(&event)
	require.NoError(t, err)
	assert.Equal(t, "fixed", event.ID)
	assert.Equal(t, at, event.OccurredAt)
}

func TestDeliverRejectsMalformedBodies(t *testing.T) {
	called := false
	handler := func(Event) error { called = true; return nil }

	assert.Error(t, deliver([]byte("not json"), handler))
	assert.Error(t, deliver([]byte(`{"id":"x"}`), handler))
	assert.False(t, called)

	boom := errors.New("boom")
	err := deliver([]byte(`{"type":"chat.renamed"}`), func(Event) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{}
	assert.ErrorContains(t, c.PublishEvent(Event{Type: UserDeleted}), "not available")
	assert.ErrorContains(t, c.ConsumeEvents(LogEvent), "not available")
}
