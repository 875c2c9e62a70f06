package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/autoflow/pkg/cmd"
	"github.com/dukex/autoflow/pkg/log"
	"github.com/dukex/autoflow/pkg/sources/queue"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:                  "autoflow-trigger",
		Usage:                 "Consume trigger events and fire matching automations",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "trigger-id",
				Aliases: []string{"id"},
				Usage:   "Custom trigger service ID (auto-generated if not provided)",
				Sources: cli.EnvVars("TRIGGER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file://, postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   cmd.EventBusKafka,
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address of the trigger queue, empty to disable",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				Sources: cli.EnvVars("REDIS_DB"),
			},
			&cli.StringFlag{
				Name:    "redis-queue",
				Usage:   "Redis list holding trigger messages",
				Value:   queue.DefaultQueue,
				Sources: cli.EnvVars("REDIS_QUEUE"),
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

			triggerID := command.String("trigger-id")
			if triggerID == "" {
				triggerID = "trigger-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("autoflow-trigger").With("trigger_id", triggerID)

			logger.InfoContext(ctx, "Initializing Autoflow trigger service")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracer, shutdownTracer, err := cmd.NewTracer(ctx, command.Bool("otel-enabled"), "autoflow-trigger")
			if err != nil {
				return err
			}

			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer", "error", err)
				}
			}()

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"), nil)
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), "autoflow-trigger", logger)
			if err != nil {
				return err
			}

			if eventBus == nil {
				return cli.Exit("autoflow-trigger needs an event bus", 1)
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var source Source
			if addr := command.String("redis-addr"); addr != "" {
				source = queue.New(queue.Config{
					Addr:     addr,
					Password: command.String("redis-password"),
					DB:       int(command.Int("redis-db")),
					Queue:    command.String("redis-queue"),
				}, eventBus, logger)
			}

			manager := NewTriggerManager(triggerID, persistence, eventBus, source, tracer, logger)

			return manager.Run(ctx)
		},
	}

	err := root.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
