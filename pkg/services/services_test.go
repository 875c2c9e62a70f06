package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/mocks"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence/memory"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type testEnv struct {
	registry *Registry
	store    *memory.Persistence
	clock    *fakeClock
	bus      *mocks.MockEventBus
}

func sequentialIDs() func(string) string {
	var (
		mu sync.Mutex
		n  int
	)

	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()

		n++

		return fmt.Sprintf("%s_%03d", prefix, n)
	}
}

func newTestEnv(t *testing.T, opts ...memory.Option) *testEnv {
	t.Helper()

	env := &testEnv{
		store: memory.NewPersistence(opts...),
		clock: &fakeClock{now: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)},
		bus:   &mocks.MockEventBus{},
	}
	env.bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	env.registry = NewRegistry(env.store, catalog.Default(), schema.Default(),
		WithClock(env.clock.Now),
		WithIDGenerator(sequentialIDs()),
		WithPublisher(env.bus),
	)

	return env
}

func slackConfig() map[string]string {
	return map[string]string{
		"webhookUrl": "https://hooks.slack.com/x",
		"channel":    "#orders",
	}
}

func orderPayload() models.TriggerData {
	return models.TriggerData{"order_id": "ORD-1042", "company": "Acme Dental", "amount": 1200.0}
}

func (env *testEnv) createSlack(t *testing.T) *models.Automation {
	t.Helper()

	automation, err := env.registry.Automations.Create(t.Context(), catalog.SlugSlackOrderCreated, "Order alerts", slackConfig())
	require.NoError(t, err)

	return automation
}
