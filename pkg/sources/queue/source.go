// Package queue provides a Redis list trigger source. Producers LPUSH or
// RPUSH JSON trigger messages onto a list, and the source publishes each one
// as a trigger event.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/models"
	redis "github.com/redis/go-redis/v9"
)

const (
	DefaultAddr  = "localhost:6379"
	DefaultQueue = "autoflow:triggers"

	sourceName  = "redis"
	popTimeout  = 1 * time.Second
	errorPause  = 1 * time.Second
	pingTimeout = 5 * time.Second
)

var ErrInvalidMessage = errors.New("invalid queue message")

// Client is the subset of the Redis client the source uses.
type Client interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

// Message is the JSON shape pushed by producers.
type Message struct {
	EventType string             `json:"event_type"`
	Source    string             `json:"source,omitempty"`
	Payload   models.TriggerData `json:"payload"`
}

// Decode parses a raw queue message into a trigger event.
func Decode(raw string) (*events.TriggerReceived, error) {
	var message Message
	if err := json.Unmarshal([]byte(raw), &message); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	message.EventType = strings.TrimSpace(message.EventType)
	if err := catalog.ValidateEventType(message.EventType); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if message.Source == "" {
		message.Source = sourceName
	}

	if message.Payload == nil {
		message.Payload = models.TriggerData{}
	}

	return events.NewTriggerReceived(message.EventType, message.Source, message.Payload), nil
}

type Source struct {
	queue     string
	client    Client
	publisher eventbus.EventPublisher
	logger    *slog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New connects a source to the Redis server described by cfg.
func New(cfg Config, publisher eventbus.EventPublisher, logger *slog.Logger) *Source {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return NewWithClient(client, cfg.Queue, publisher, logger.With("addr", cfg.Addr, "db", cfg.DB))
}

func NewWithClient(client Client, queue string, publisher eventbus.EventPublisher, logger *slog.Logger) *Source {
	if queue == "" {
		queue = DefaultQueue
	}

	return &Source{
		queue:     queue,
		client:    client,
		publisher: publisher,
		stopCh:    make(chan struct{}),
		logger: logger.With(
			"module", "queue_source",
			"queue", queue,
		),
	}
}

// Start checks the connection and consumes the queue in the background.
func (s *Source) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting queue source")

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s.wg.Add(1)

	go s.consume(ctx)

	return nil
}

func (s *Source) consume(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			s.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			if err := s.Poll(ctx); err != nil {
				s.logger.ErrorContext(ctx, "Error processing message", "error", err)

				select {
				case <-time.After(errorPause):
				case <-s.stopCh:
				case <-ctx.Done():
				}
			}
		}
	}
}

// Poll waits briefly for one message and publishes it. Malformed messages
// are logged and dropped.
func (s *Source) Poll(ctx context.Context) error {
	result, err := s.client.BLPop(ctx, popTimeout, s.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	event, err := Decode(result[1])
	if err != nil {
		s.logger.WarnContext(ctx, "Dropping queue message", "error", err)

		return nil
	}

	if err := s.publisher.Publish(ctx, event.EventType, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType, err)
	}

	s.logger.DebugContext(ctx, "Queue message published", "event_id", event.ID, "event_type", event.EventType)

	return nil
}

// Stop waits for the consumer to exit and closes the client.
func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping queue source")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.wg.Wait()

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	return nil
}
