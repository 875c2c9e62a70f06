package mocks

import (
	"context"

	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/stretchr/testify/mock"
)

// MockEventBus records bus interactions. Expectations are set with On as
// usual; Published returns what went through Publish.
type MockEventBus struct {
	mock.Mock
}

var _ eventbus.EventBus = (*MockEventBus)(nil)

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	return m.Called(ctx, key, event).Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	return m.Called(eventType, handler).Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

func (m *MockEventBus) GenerateID() string {
	return m.Called().String(0)
}

// Published returns the events of eventType passed to Publish, in call order.
// An empty eventType matches every event.
func (m *MockEventBus) Published(eventType events.EventType) []eventbus.Event {
	var published []eventbus.Event

	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}

		event, ok := call.Arguments.Get(2).(eventbus.Event)
		if !ok {
			continue
		}

		if eventType == "" || event.GetType() == eventType {
			published = append(published, event)
		}
	}

	return published
}
