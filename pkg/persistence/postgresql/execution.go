package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence"
)

const executionColumns = `
			id
		  , automation_id
		  , event_type
		  , status
		  , started_at
		  , completed_at
		  , duration_ms
		  , error_message
		  , trigger_data
		  , event_id`

// ExecutionRepository handles execution-record database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// GetAll returns every execution ordered by start time.
func (r *ExecutionRepository) GetAll(ctx context.Context) ([]*models.AutomationExecution, error) {
	query := `SELECT` + executionColumns + `
		FROM automation_executions
		ORDER BY started_at ASC, id ASC
	`

	return r.query(ctx, query)
}

func (r *ExecutionRepository) GetByAutomation(ctx context.Context, automationID string) ([]*models.AutomationExecution, error) {
	query := `SELECT` + executionColumns + `
		FROM automation_executions
		WHERE automation_id = $1
		ORDER BY started_at ASC, id ASC
	`

	return r.query(ctx, query, automationID)
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.AutomationExecution, error) {
	query := `SELECT` + executionColumns + `
		FROM automation_executions
		WHERE id = $1
	`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// Save inserts or updates an execution record.
func (r *ExecutionRepository) Save(ctx context.Context, execution *models.AutomationExecution) error {
	triggerData := execution.TriggerData
	if triggerData == nil {
		triggerData = models.TriggerData{}
	}

	triggerJSON, err := json.Marshal(triggerData)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	query := `
		INSERT INTO automation_executions (` + executionColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status
		  , started_at = EXCLUDED.started_at
		  , completed_at = EXCLUDED.completed_at
		  , duration_ms = EXCLUDED.duration_ms
		  , error_message = EXCLUDED.error_message
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.AutomationID,
		execution.EventType,
		string(execution.Status),
		execution.StartedAt.UTC(),
		nullTime(execution.CompletedAt),
		nullInt64(execution.DurationMs),
		nullString(execution.ErrorMessage),
		triggerJSON,
		execution.EventID,
	)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) DeleteByAutomation(ctx context.Context, automationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM automation_executions WHERE automation_id = $1`, automationID)
	if err != nil {
		return fmt.Errorf("failed to delete executions of automation %s: %w", automationID, err)
	}

	return nil
}

func (r *ExecutionRepository) query(ctx context.Context, query string, args ...any) ([]*models.AutomationExecution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	executions := make([]*models.AutomationExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func scanExecution(row rowScanner) (*models.AutomationExecution, error) {
	var (
		execution    models.AutomationExecution
		status       string
		completedAt  sql.NullTime
		durationMs   sql.NullInt64
		errorMessage sql.NullString
		triggerJSON  []byte
	)

	err := row.Scan(
		&execution.ID,
		&execution.AutomationID,
		&execution.EventType,
		&status,
		&execution.StartedAt,
		&completedAt,
		&durationMs,
		&errorMessage,
		&triggerJSON,
		&execution.EventID,
	)
	if err != nil {
		return nil, err
	}

	execution.Status = models.ExecutionStatus(status)
	execution.StartedAt = execution.StartedAt.UTC()

	if completedAt.Valid {
		t := completedAt.Time.UTC()
		execution.CompletedAt = &t
	}

	if durationMs.Valid {
		d := durationMs.Int64
		execution.DurationMs = &d
	}

	if errorMessage.Valid {
		m := errorMessage.String
		execution.ErrorMessage = &m
	}

	if len(triggerJSON) > 0 {
		if err := json.Unmarshal(triggerJSON, &execution.TriggerData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
		}
	}

	return &execution, nil
}
