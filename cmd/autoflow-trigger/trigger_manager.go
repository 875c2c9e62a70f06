package main

import (
	"context"
	"log/slog"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/dispatch"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/dukex/autoflow/pkg/services"
	"github.com/dukex/autoflow/pkg/trigger"
	"go.opentelemetry.io/otel/trace"
)

// Source is an external producer of trigger events.
type Source interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type TriggerManager struct {
	id       string
	logger   *slog.Logger
	eventBus eventbus.EventBus
	ingestor *trigger.Ingestor
	source   Source
}

func NewTriggerManager(
	id string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	source Source,
	tracer trace.Tracer,
	logger *slog.Logger,
) *TriggerManager {
	schemas := schema.Default()
	registry := services.NewRegistry(
		persistence,
		catalog.Default(),
		schemas,
		services.WithPublisher(eventBus),
		services.WithLogger(logger),
	)

	return &TriggerManager{
		id:       id,
		logger:   logger.With("module", "trigger_manager"),
		eventBus: eventBus,
		ingestor: trigger.NewIngestor(registry, schemas, dispatch.NewLogRegistry(logger), tracer, logger),
		source:   source,
	}
}

// Run consumes trigger events until ctx is cancelled.
func (tm *TriggerManager) Run(ctx context.Context) error {
	tm.logger.InfoContext(ctx, "Starting trigger manager")

	err := tm.ingestor.Register(tm.eventBus)
	if err != nil {
		return err
	}

	err = tm.eventBus.Subscribe(ctx)
	if err != nil {
		tm.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if tm.source != nil {
		if err := tm.source.Start(ctx); err != nil {
			return err
		}

		defer func() {
			if err := tm.source.Stop(context.Background()); err != nil {
				tm.logger.ErrorContext(ctx, "Failed to stop trigger source", "error", err)
			}
		}()
	}

	tm.logger.InfoContext(ctx, "Trigger manager started successfully")

	<-ctx.Done()
	tm.logger.InfoContext(ctx, "Shutting down trigger manager...")

	return nil
}
