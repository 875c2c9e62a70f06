// Package main provides the Autoflow API server implementation.
package main

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/dispatch"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/dukex/autoflow/pkg/services"
	"github.com/dukex/autoflow/pkg/simulator"
	"github.com/dukex/autoflow/pkg/trigger"
	"github.com/dukex/autoflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Logger      *slog.Logger
	Persistence persistence.Persistence
	// EventBus may be nil.
	EventBus eventbus.EventBus
	// InProcess runs the trigger ingestor inside the API. Without a bus the
	// ingestor handles published events synchronously.
	InProcess        bool
	Tracer           trace.Tracer
	SimulateSchedule string
	// Dispatcher defaults to logging every action.
	Dispatcher dispatch.Dispatcher
}

type API struct {
	logger    *slog.Logger
	handlers  *web.APIHandlers
	eventBus  eventbus.EventBus
	simulator *simulator.Simulator
	app       *fiber.App
}

func NewAPI(ctx context.Context, opts Options) (*API, error) {
	cat := catalog.Default()
	schemas := schema.Default()

	registry := services.NewRegistry(
		opts.Persistence,
		cat,
		schemas,
		services.WithPublisher(opts.EventBus),
		services.WithLogger(opts.Logger),
	)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = dispatch.NewLogRegistry(opts.Logger)
	}

	var publisher eventbus.EventPublisher

	switch {
	case opts.EventBus == nil:
		publisher = trigger.NewIngestor(registry, schemas, dispatcher, opts.Tracer, opts.Logger)
	case opts.InProcess:
		ingestor := trigger.NewIngestor(registry, schemas, dispatcher, opts.Tracer, opts.Logger)

		if err := ingestor.Register(opts.EventBus); err != nil {
			return nil, err
		}

		if err := opts.EventBus.Subscribe(ctx); err != nil {
			return nil, err
		}

		publisher = opts.EventBus
	default:
		publisher = opts.EventBus
	}

	a := &API{
		logger:   opts.Logger,
		eventBus: opts.EventBus,
		handlers: web.NewAPIHandlers(
			registry,
			cat,
			schemas,
			publisher,
			validator.New(validator.WithRequiredStructEnabled()),
		),
	}

	if opts.SimulateSchedule != "" {
		sim, err := simulator.New(publisher, schemas, opts.SimulateSchedule, opts.Logger)
		if err != nil {
			return nil, err
		}

		a.simulator = sim
	}

	a.app = a.App()

	return a, nil
}

func (a *API) App() *fiber.App {
	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Autoflow API")
	})

	a.handlers.Register(app)

	return app
}

// Start serves until ctx is cancelled.
func (a *API) Start(ctx context.Context, port int) error {
	if a.simulator != nil {
		if err := a.simulator.Start(ctx); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- a.app.Listen(":" + strconv.Itoa(port))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.InfoContext(ctx, "Shutting down API...")

		err := a.app.Shutdown()
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	}
}

func (a *API) Stop(ctx context.Context) {
	if a.simulator != nil {
		a.simulator.Stop(ctx)
	}
}
