package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler(t *testing.T) {
	handler := NewMockEventHandler("InvoicePaid", "InvoiceOverdue")
	assert.Equal(t, []string{"InvoicePaid", "InvoiceOverdue"}, handler.EventTypes())

	event := NewTestEvent("InvoicePaid", TestUserID)
	require.NoError(t, handler.Handle(context.Background(), event))
	assert.Equal(t, 1, handler.HandledCount())
	assert.Equal(t, []string{"InvoicePaid"}, handler.HandledTypes())

	handler.SetError(assert.AnError)
	assert.Equal(t, assert.AnError, handler.Handle(context.Background(), event))

	handler.Reset()
	assert.Equal(t, 0, handler.HandledCount())
	assert.NoError(t, handler.Handle(context.Background(), event))
}

func TestNewTestEvent(t *testing.T) {
	userID := uuid.New()
	event := NewTestEvent("Something", userID)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "Something", event.EventType())
	assert.Equal(t, userID, event.OwnerID())
	assert.Equal(t, "TestAggregate", event.AggregateType())
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewMockEventHandler("E")
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewTestEvent("E", uuid.New()))
	}()

	assert.True(t, WaitForEventCount(t, handler, 1, time.Second))
	assert.False(t, WaitForEventCount(t, handler, 2, 30*time.Millisecond))
}
