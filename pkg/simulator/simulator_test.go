package simulator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/mocks"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	bus := &mocks.MockEventBus{}

	tests := []struct {
		name       string
		schedule   string
		eventTypes []string
		wantErr    bool
	}{
		{name: "default schedule", schedule: ""},
		{name: "standard cron", schedule: "*/5 * * * *"},
		{name: "descriptor", schedule: "@every 2s"},
		{name: "invalid schedule", schedule: "every now and then", wantErr: true},
		{name: "unknown event type", schedule: "@hourly", eventTypes: []string{"order_teleported"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{}
			if tt.eventTypes != nil {
				opts = append(opts, WithEventTypes(tt.eventTypes...))
			}

			s, err := New(bus, schema.Default(), tt.schedule, slog.Default(), opts...)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestNext_PayloadsMatchSchemas(t *testing.T) {
	schemas := schema.Default()

	s, err := New(&mocks.MockEventBus{}, schemas, "", slog.Default(), WithRand(rand.New(rand.NewPCG(7, 11))))
	require.NoError(t, err)

	seen := make(map[string]bool)

	for range 200 {
		event, err := s.Next()
		require.NoError(t, err)

		seen[event.EventType] = true
		assert.Equal(t, "simulator", event.Source)
		assert.NoError(t, schemas.ValidatePayload(event.EventType, event.Payload), event.EventType)
	}

	assert.Len(t, seen, len(catalog.EventTypes()))
}

func TestTick_Publishes(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, catalog.EventOrderCreated, mock.MatchedBy(func(e eventbus.Event) bool {
		trigger, ok := e.(*events.TriggerReceived)

		return ok && trigger.Payload["order_id"] != nil
	})).Return(nil).Once()

	s, err := New(bus, schema.Default(), "", slog.Default(), WithEventTypes(catalog.EventOrderCreated))
	require.NoError(t, err)

	event, err := s.Tick(t.Context())
	require.NoError(t, err)
	assert.Equal(t, catalog.EventOrderCreated, event.EventType)

	bus.AssertExpectations(t)
	assert.Equal(t, []eventbus.Event{event}, bus.Published(events.TriggerReceivedEvent))
	assert.Empty(t, bus.Published(events.AutomationCreatedEvent))
}

func TestStartStop(t *testing.T) {
	published := make(chan string, 10)

	publisher := eventbus.PublisherFunc(func(_ context.Context, key string, _ eventbus.Event) error {
		published <- key

		return nil
	})

	s, err := New(publisher, schema.Default(), "@every 1s", slog.Default())
	require.NoError(t, err)

	require.NoError(t, s.Start(t.Context()))
	assert.Error(t, s.Start(t.Context()))

	select {
	case key := <-published:
		assert.NoError(t, catalog.ValidateEventType(key))
	case <-time.After(3 * time.Second):
		t.Fatal("simulator did not publish")
	}

	s.Stop(t.Context())
	s.Stop(t.Context())
}
