package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *WatermillEventBus {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	bus := NewWatermillEventBus(pubSub, pubSub, slog.Default())

	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)
	received := make(chan *events.TriggerReceived, 1)

	require.NoError(t, bus.Handle(events.TriggerReceivedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.TriggerReceived)

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	sent := events.NewTriggerReceived("order_created", "test", models.TriggerData{"order_id": "ORD-1"})
	require.NoError(t, bus.Publish(ctx, "order_created", sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "order_created", got.EventType)
		assert.Equal(t, "ORD-1", got.Payload["order_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("trigger event was not delivered")
	}
}

func TestWatermillEventBus_IgnoresEventsWithoutHandler(t *testing.T) {
	bus := newTestBus(t)
	toggled := make(chan *events.AutomationToggled, 1)

	require.NoError(t, bus.Handle(events.AutomationToggledEvent, func(_ context.Context, event any) error {
		toggled <- event.(*events.AutomationToggled)

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "aut_001", events.NewAutomationDeleted("aut_001", 3)))
	require.NoError(t, bus.Publish(ctx, "aut_002", events.NewAutomationToggled("aut_002", models.AutomationStatusPaused)))

	select {
	case got := <-toggled:
		assert.Equal(t, "aut_002", got.AutomationID)
		assert.Equal(t, models.AutomationStatusPaused, got.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("toggle event was not delivered")
	}
}

func TestDecodeEvent(t *testing.T) {
	event, err := decodeEvent(events.ExecutionCompletedEvent, []byte(`{"execution_id":"exe_1","status":"success"}`))
	require.NoError(t, err)

	completed, ok := event.(*events.ExecutionCompleted)
	require.True(t, ok)
	assert.Equal(t, "exe_1", completed.ExecutionID)
	assert.Equal(t, models.ExecutionStatusSuccess, completed.Status)

	event, err = decodeEvent("workflow.triggered", []byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, event)

	_, err = decodeEvent(events.TriggerReceivedEvent, []byte(`not json`))
	assert.Error(t, err)
}
