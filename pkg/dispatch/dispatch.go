// Package dispatch delivers the side effect of an automation once its trigger
// fired. Delivery outcomes are reported back to the execution log.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/autoflow/pkg/models"
)

// ErrNoDispatcher is returned for action types without a registered dispatcher.
var ErrNoDispatcher = errors.New("no dispatcher registered for action type")

// ExecutionError is a terminal delivery failure. Its message is stored on the
// failed execution record.
type ExecutionError struct {
	ActionType models.ActionType
	Message    string
	Err        error
}

func (e *ExecutionError) Error() string {
	return e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Request is one delivery to perform.
type Request struct {
	AutomationID string
	ActionType   models.ActionType
	Config       map[string]string
	TriggerData  models.TriggerData
}

type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, req Request) error

func (f DispatcherFunc) Dispatch(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// Registry routes requests to the dispatcher of their action type.
type Registry struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	dispatchers map[models.ActionType]Dispatcher
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:      logger.With("module", "dispatch"),
		dispatchers: make(map[models.ActionType]Dispatcher),
	}
}

// NewLogRegistry registers a LogDispatcher for every action type.
func NewLogRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, actionType := range models.ActionTypes() {
		r.Register(actionType, NewLogDispatcher(logger))
	}

	return r
}

func (r *Registry) Register(actionType models.ActionType, dispatcher Dispatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dispatchers[actionType] = dispatcher
}

func (r *Registry) Has(actionType models.ActionType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.dispatchers[actionType]

	return ok
}

// Dispatch delivers req. Any failure is returned as an *ExecutionError.
func (r *Registry) Dispatch(ctx context.Context, req Request) error {
	r.mu.RLock()
	dispatcher, ok := r.dispatchers[req.ActionType]
	r.mu.RUnlock()

	if !ok {
		return &ExecutionError{
			ActionType: req.ActionType,
			Message:    fmt.Sprintf("no dispatcher for action type %q", req.ActionType),
			Err:        ErrNoDispatcher,
		}
	}

	err := dispatcher.Dispatch(ctx, req)
	if err == nil {
		return nil
	}

	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr
	}

	return &ExecutionError{ActionType: req.ActionType, Message: err.Error(), Err: err}
}

// Message returns the text to store for a failed delivery.
func Message(err error) string {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Message
	}

	return err.Error()
}
