package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/google/uuid"
)

type settings struct {
	now       func() time.Time
	newID     func(prefix string) string
	publisher eventbus.EventPublisher
	logger    *slog.Logger
	mu        *sync.Mutex
}

// Option configures the services.
type Option func(*settings)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithIDGenerator replaces the identifier generator. The prefix is "aut" for
// automations and "exe" for executions.
func WithIDGenerator(newID func(prefix string) string) Option {
	return func(s *settings) {
		s.newID = newID
	}
}

// WithPublisher makes the services publish lifecycle events.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(s *settings) {
		s.publisher = publisher
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// NewID returns prefix_ followed by 12 random hex digits.
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func newSettings(opts []Option) *settings {
	s := &settings{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  NewID,
		logger: slog.Default(),
		mu:     &sync.Mutex{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("module", "services")

	return s
}

func (s *settings) clock() time.Time {
	return s.now().UTC()
}

func (s *settings) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.Publish(ctx, key, event)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "key", key, "error", err)
	}
}

// Registry bundles the automation and execution services over one store.
// Both share a lock so mutations of the same automation record serialize.
type Registry struct {
	Automations *Automation
	Executions  *Execution
}

func NewRegistry(p persistence.Persistence, cat *catalog.Catalog, schemas *schema.Registry, opts ...Option) *Registry {
	s := newSettings(opts)

	return &Registry{
		Automations: newAutomation(p, cat, schemas, s),
		Executions:  newExecution(p, schemas, s),
	}
}
