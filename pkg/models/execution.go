package models

import (
	"errors"
	"fmt"
	"time"
)

// ExecutionStatus is the state of one automation firing.
//
//	pending -> running -> success
//	                   -> failed
type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "pending"
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

var executionTransitions = map[ExecutionStatus][]ExecutionStatus{
	ExecutionStatusPending: {ExecutionStatusRunning},
	ExecutionStatusRunning: {ExecutionStatusSuccess, ExecutionStatusFailed},
}

func (s ExecutionStatus) IsValid() bool {
	switch s {
	case ExecutionStatusPending, ExecutionStatusRunning, ExecutionStatusSuccess, ExecutionStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusSuccess || s == ExecutionStatusFailed
}

// CanTransitionTo reports whether s may move to next.
func (s ExecutionStatus) CanTransitionTo(next ExecutionStatus) bool {
	for _, allowed := range executionTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// TriggerData is the event payload that fired an execution. Values are
// strings or numbers; the accepted keys per event type are declared by the
// payload schemas in package schema.
type TriggerData map[string]any

// String returns the value under key formatted as a string.
func (d TriggerData) String(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

// Clone returns a shallow copy of the payload.
func (d TriggerData) Clone() TriggerData {
	if d == nil {
		return nil
	}

	clone := make(TriggerData, len(d))
	for k, v := range d {
		clone[k] = v
	}

	return clone
}

// AutomationExecution is the historical record of one automation firing.
type AutomationExecution struct {
	ID           string          `json:"id"            yaml:"id"`
	AutomationID string          `json:"automation_id" yaml:"automation_id"`
	EventType    string          `json:"event_type"    yaml:"event_type"`
	EventID      string          `json:"event_id,omitempty" yaml:"event_id,omitempty"`
	Status       ExecutionStatus `json:"status"        yaml:"status"`
	StartedAt    time.Time       `json:"started_at"    yaml:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at"  yaml:"completed_at"`
	DurationMs   *int64          `json:"duration_ms"   yaml:"duration_ms"`
	ErrorMessage *string         `json:"error_message" yaml:"error_message"`
	TriggerData  TriggerData     `json:"trigger_data"  yaml:"trigger_data"`
}

// Finish moves a running execution to its terminal state, stamping the
// completion time and duration.
func (e *AutomationExecution) Finish(status ExecutionStatus, message string, at time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %s is not a terminal status", ErrInvalidTransition, status)
	}

	if !e.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, status)
	}

	if at.Before(e.StartedAt) {
		at = e.StartedAt
	}

	duration := at.Sub(e.StartedAt).Milliseconds()
	completed := at

	e.Status = status
	e.CompletedAt = &completed
	e.DurationMs = &duration
	e.ErrorMessage = nil

	if status == ExecutionStatusFailed {
		if message == "" {
			message = "execution failed"
		}

		e.ErrorMessage = &message
	}

	return nil
}

// Start moves a pending execution to running.
func (e *AutomationExecution) Start(at time.Time) error {
	if !e.Status.CanTransitionTo(ExecutionStatusRunning) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, ExecutionStatusRunning)
	}

	e.Status = ExecutionStatusRunning
	e.StartedAt = at

	return nil
}

// Clone returns a deep copy of the execution.
func (e *AutomationExecution) Clone() *AutomationExecution {
	if e == nil {
		return nil
	}

	clone := *e
	clone.TriggerData = e.TriggerData.Clone()

	if e.CompletedAt != nil {
		t := *e.CompletedAt
		clone.CompletedAt = &t
	}

	if e.DurationMs != nil {
		d := *e.DurationMs
		clone.DurationMs = &d
	}

	if e.ErrorMessage != nil {
		m := *e.ErrorMessage
		clone.ErrorMessage = &m
	}

	return &clone
}

// ErrInvalidTransition is returned when an execution status change is not
// allowed by the state machine.
var ErrInvalidTransition = errors.New("invalid execution status transition")

// Validate checks the execution invariants.
func (e *AutomationExecution) Validate() error {
	var errs []error

	if !e.Status.IsValid() {
		errs = append(errs, fmt.Errorf("invalid status %q", e.Status))
	}

	if e.CompletedAt != nil && e.CompletedAt.Before(e.StartedAt) {
		errs = append(errs, errors.New("completed_at is before started_at"))
	}

	if (e.ErrorMessage != nil) != (e.Status == ExecutionStatusFailed) {
		errs = append(errs, errors.New("error_message must be set if and only if status is failed"))
	}

	if e.DurationMs != nil {
		if e.CompletedAt == nil {
			errs = append(errs, errors.New("duration_ms set without completed_at"))
		} else if want := e.CompletedAt.Sub(e.StartedAt).Milliseconds(); *e.DurationMs != want {
			errs = append(errs, fmt.Errorf("duration_ms %d does not match %d", *e.DurationMs, want))
		}
	}

	return errors.Join(errs...)
}
