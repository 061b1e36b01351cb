package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New(), uuid.New())}
}

type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) handler(name string, types []string, err error) *HandlerFunc {
	return &HandlerFunc{Types: types, Fn: func(_ context.Context, ev shared.DomainEvent) error {
		r.mu.Lock()
		r.seen = append(r.seen, name+":"+ev.EventType())
		r.mu.Unlock()
		return err
	}}
}

func TestBus_DeliversByType(t *testing.T) {
	bus := NewBus(nil)
	rec := &recorder{}
	bus.Subscribe(rec.handler("paid", []string{"InvoicePaid"}, nil))
	bus.Subscribe(rec.handler("overdue", []string{"InvoiceOverdue"}, nil))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoicePaid")))
	assert.Equal(t, []string{"paid:InvoicePaid"}, rec.seen)
	assert.Equal(t, int64(1), bus.Published())
}

func TestBus_CatchAllAfterTyped(t *testing.T) {
	bus := NewBus(nil)
	rec := &recorder{}
	bus.Subscribe(rec.handler("all", nil, nil))
	bus.Subscribe(rec.handler("typed", []string{"MessageSent"}, nil))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("MessageSent")))
	assert.Equal(t, []string{"typed:MessageSent", "all:MessageSent"}, rec.seen)
}

func TestBus_HandlerFailureDoesNotPropagate(t *testing.T) {
	bus := NewBus(nil)
	rec := &recorder{}
	bus.Subscribe(rec.handler("broken", []string{"LeadConverted"}, errors.New("boom")))
	bus.Subscribe(&HandlerFunc{Types: []string{"LeadConverted"}, Fn: func(context.Context, shared.DomainEvent) error {
		panic("handler bug")
	}})
	bus.Subscribe(rec.handler("after", []string{"LeadConverted"}, nil))

	err := bus.Publish(context.Background(), newTestEvent("LeadConverted"))
	require.NoError(t, err)
	assert.Equal(t, []string{"broken:LeadConverted", "after:LeadConverted"}, rec.seen)
	assert.Equal(t, int64(2), bus.Failures())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	rec := &recorder{}
	h := rec.handler("h", []string{"BookingConfirmed"}, nil)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("BookingConfirmed")))
	assert.Empty(t, rec.seen)
}

func TestBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewBus(nil)
	rec := &recorder{}
	bus.Subscribe(rec.handler("h", []string{"A"}, nil), "B")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, []string{"h:B"}, rec.seen)
}

func TestBus_StartStop(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.running.Load())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.running.Load())
}
