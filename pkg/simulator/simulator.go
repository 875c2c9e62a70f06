// Package simulator publishes synthetic trigger events on a schedule so the
// dashboard has live activity in demo mode.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/robfig/cron/v3"
)

const DefaultSchedule = "@every 30s"

const source = "simulator"

var companies = []string{"Acme Dental", "Brightside Auto", "Summit HVAC", "Harbor Med Spa", "Northwind Solar"}

var customers = []string{"Dana Whitfield", "Luis Ortega", "Priya Raman", "Sam Okafor"}

type Option func(*Simulator)

// WithEventTypes restricts the simulated event types.
func WithEventTypes(eventTypes ...string) Option {
	return func(s *Simulator) {
		s.eventTypes = eventTypes
	}
}

// WithRand makes the generated events reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) {
		s.rng = rng
	}
}

type Simulator struct {
	publisher  eventbus.EventPublisher
	schemas    *schema.Registry
	schedule   string
	eventTypes []string
	logger     *slog.Logger

	mu   sync.Mutex
	rng  *rand.Rand
	cron *cron.Cron
}

// New validates the cron schedule and event types.
func New(publisher eventbus.EventPublisher, schemas *schema.Registry, schedule string, logger *slog.Logger, opts ...Option) (*Simulator, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid simulator schedule: %w", err)
	}

	s := &Simulator{
		publisher:  publisher,
		schemas:    schemas,
		schedule:   schedule,
		eventTypes: catalog.EventTypes(),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:     logger.With("module", "simulator", "schedule", schedule),
	}

	for _, opt := range opts {
		opt(s)
	}

	if len(s.eventTypes) == 0 {
		return nil, errors.New("simulator needs at least one event type")
	}

	for _, eventType := range s.eventTypes {
		if _, err := schemas.Schema(eventType); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start runs Tick on the schedule until Stop is called.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("simulator already started")
	}

	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Tick(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish simulated event", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule simulator: %w", err)
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Simulator started")

	return nil
}

// Stop waits for a running tick to finish.
func (s *Simulator) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	<-c.Stop().Done()
	s.logger.InfoContext(ctx, "Simulator stopped")
}

// Tick publishes one synthetic event.
func (s *Simulator) Tick(ctx context.Context) (*events.TriggerReceived, error) {
	event, err := s.Next()
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, event.EventType, event); err != nil {
		return nil, fmt.Errorf("failed to publish %s: %w", event.EventType, err)
	}

	s.logger.DebugContext(ctx, "Simulated event published", "event_type", event.EventType, "event_id", event.ID)

	return event, nil
}

// Next builds a random event whose payload satisfies its schema.
func (s *Simulator) Next() (*events.TriggerReceived, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eventType := s.eventTypes[s.rng.IntN(len(s.eventTypes))]

	payloadSchema, err := s.schemas.Schema(eventType)
	if err != nil {
		return nil, err
	}

	payload := make(models.TriggerData, len(payloadSchema.Fields))
	for _, field := range payloadSchema.Fields {
		payload[field.Name] = s.value(field)
	}

	return events.NewTriggerReceived(eventType, source, payload), nil
}

func (s *Simulator) value(field schema.PayloadField) any {
	switch {
	case field.Type == schema.FieldTypeNumber && field.Name == "amount":
		return math.Round((250+s.rng.Float64()*24750)*100) / 100
	case field.Type == schema.FieldTypeNumber:
		return float64(1 + s.rng.IntN(60))
	case strings.HasSuffix(field.Name, "_id"):
		prefix := strings.ToUpper(strings.TrimSuffix(field.Name, "_id"))
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}

		return fmt.Sprintf("%s-%05d", prefix, s.rng.IntN(100000))
	case field.Name == "company" || field.Name == "merchant":
		return companies[s.rng.IntN(len(companies))]
	case field.Name == "customer":
		return customers[s.rng.IntN(len(customers))]
	case field.Name == "email":
		return fmt.Sprintf("customer%d@example.com", s.rng.IntN(1000))
	default:
		return field.Name
	}
}
