// Package trigger turns incoming business events into automation executions.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/dispatch"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/log"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/otelhelper"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/dukex/autoflow/pkg/services"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Result lists the executions one event produced.
type Result struct {
	EventType  string                        `json:"event_type"`
	Executions []*models.AutomationExecution `json:"executions"`
}

// Ingestor fans each trigger event out to the active automations listening
// to its event type, dispatches their actions and records the outcomes.
type Ingestor struct {
	automations *services.Automation
	executions  *services.Execution
	schemas     *schema.Registry
	dispatcher  dispatch.Dispatcher
	tracer      trace.Tracer
	logger      *slog.Logger
}

func NewIngestor(
	registry *services.Registry,
	schemas *schema.Registry,
	dispatcher dispatch.Dispatcher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Ingestor {
	return &Ingestor{
		automations: registry.Automations,
		executions:  registry.Executions,
		schemas:     schemas,
		dispatcher:  dispatcher,
		tracer:      tracer,
		logger:      logger.With("module", "trigger_ingestor"),
	}
}

// Register subscribes the ingestor to trigger events on bus.
func (i *Ingestor) Register(bus eventbus.EventSubscriber) error {
	return bus.Handle(events.TriggerReceivedEvent, i.handleEvent)
}

func (i *Ingestor) handleEvent(ctx context.Context, event any) error {
	trigger, ok := event.(*events.TriggerReceived)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	_, err := i.Handle(ctx, trigger)
	if err != nil && services.IsValidationError(err) {
		// Invalid events are dropped; redelivery would fail the same way.
		i.logger.WarnContext(ctx, "Dropping invalid trigger event",
			"event_id", trigger.ID, "event_type", trigger.EventType, "error", err)

		return nil
	}

	return err
}

// Handle processes one trigger event synchronously. Every matching automation
// is attempted and the failures are joined. Automations that already fired
// for event.ID are skipped, so a redelivered event only runs the remainder.
func (i *Ingestor) Handle(ctx context.Context, event *events.TriggerReceived) (*Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, i.tracer, "trigger.handle",
		attribute.String(otelhelper.EventIDKey, event.ID),
		attribute.String(otelhelper.EventTypeKey, event.EventType),
	)
	defer span.End()

	if err := catalog.ValidateEventType(event.EventType); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if err := i.schemas.ValidatePayload(event.EventType, event.Payload); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	active, err := i.automations.List(ctx, services.AutomationFilter{Status: models.AutomationStatusActive})
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to load automations: %w", err)
	}

	result := &Result{EventType: event.EventType, Executions: make([]*models.AutomationExecution, 0)}

	var errs []error

	for _, automation := range active {
		if automation.EventType != event.EventType {
			continue
		}

		execution, err := i.run(ctx, automation, event)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAlreadyFired):
				i.logger.DebugContext(ctx, "Automation already fired for event",
					"automation_id", automation.ID, "event_id", event.ID)
			case errors.Is(err, services.ErrAutomationPaused) || services.IsNotFound(err):
				i.logger.InfoContext(ctx, "Automation changed before firing",
					"automation_id", automation.ID, "error", err)
			default:
				otelhelper.SetError(span, err, attribute.String(otelhelper.AutomationIDKey, automation.ID))
				errs = append(errs, fmt.Errorf("automation %s: %w", automation.ID, err))
			}

			continue
		}

		result.Executions = append(result.Executions, execution)
	}

	span.SetAttributes(attribute.Int(otelhelper.ExecutionCountKey, len(result.Executions)))
	i.logger.InfoContext(ctx, "Trigger event processed",
		"event_id", event.ID, "event_type", event.EventType,
		"executions", len(result.Executions), "failures", len(errs))

	return result, errors.Join(errs...)
}

func (i *Ingestor) run(ctx context.Context, automation *models.Automation, event *events.TriggerReceived) (*models.AutomationExecution, error) {
	ctx, span := otelhelper.StartSpan(ctx, i.tracer, "automation.execute",
		attribute.String(otelhelper.AutomationIDKey, automation.ID),
		attribute.String(otelhelper.ActionTypeKey, string(automation.ActionType)),
	)
	defer span.End()

	execution, err := i.executions.Enqueue(ctx, event.ID, automation.ID, event.EventType, event.Payload)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, execution.ID))
	ctx = log.WithContext(ctx, i.logger.With("event_id", event.ID, "execution_id", execution.ID))

	execution, err = i.executions.Start(ctx, execution.ID)
	if err != nil {
		return nil, err
	}

	outcome := models.ExecutionStatusSuccess
	message := ""

	err = i.dispatcher.Dispatch(ctx, dispatch.Request{
		AutomationID: automation.ID,
		ActionType:   automation.ActionType,
		Config:       automation.Config,
		TriggerData:  i.schemas.Fill(event.EventType, event.Payload),
	})
	if err != nil {
		outcome = models.ExecutionStatusFailed
		message = dispatch.Message(err)
	}

	otelhelper.SetOutcome(span, string(outcome), message)

	return i.executions.Complete(ctx, execution.ID, outcome, message)
}

// Publish handles trigger events in-process, letting the ingestor stand in
// for an event bus.
func (i *Ingestor) Publish(ctx context.Context, _ string, event eventbus.Event) error {
	return i.handleEvent(ctx, event)
}
