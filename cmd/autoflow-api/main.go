package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/cmd"
	"github.com/dukex/autoflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	root := &cli.Command{
		Name:                  "autoflow-api",
		Usage:                 "Serve the automation catalog, registry and execution log",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (memory, file://, postgres://)",
				Value:   "memory",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (none, gochannel, kafka)",
				Value:   cmd.EventBusNone,
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "seed",
				Usage:   "Load the demo automations and execution history",
				Sources: cli.EnvVars("SEED"),
			},
			&cli.StringFlag{
				Name:    "seed-file",
				Usage:   "YAML file with the initial automations and executions",
				Sources: cli.EnvVars("SEED_FILE"),
			},
			&cli.StringFlag{
				Name:    "simulate-schedule",
				Usage:   "Cron schedule for synthetic trigger events, empty to disable (e.g. @every 30s)",
				Sources: cli.EnvVars("SIMULATE_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   log.FormatText,
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("autoflow-api")

			logger.InfoContext(ctx, "Initializing Autoflow API")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracer, shutdownTracer, err := cmd.NewTracer(ctx, command.Bool("otel-enabled"), "autoflow-api")
			if err != nil {
				return err
			}

			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer", "error", err)
				}
			}()

			seed, err := cmd.LoadSeed(command.String("seed-file"), command.Bool("seed"), catalog.Default().Has, time.Now)
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"), seed)
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), "autoflow-api", logger)
			if err != nil {
				return err
			}

			if eventBus != nil {
				defer func() {
					if err := eventBus.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
					}
				}()
			}

			api, err := NewAPI(ctx, Options{
				Logger:           logger,
				Persistence:      persistence,
				EventBus:         eventBus,
				InProcess:        command.String("event-bus") != cmd.EventBusKafka,
				Tracer:           tracer,
				SimulateSchedule: command.String("simulate-schedule"),
			})
			if err != nil {
				return err
			}

			defer api.Stop(context.Background())

			return api.Start(ctx, int(command.Int("port")))
		},
	}

	err := root.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
