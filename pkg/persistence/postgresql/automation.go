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

const automationColumns = `
			id
		  , pid
		  , name
		  , description
		  , event_type
		  , event_label
		  , action_type
		  , action_label
		  , config
		  , status
		  , execution_count
		  , success_count
		  , failure_count
		  , success_rate
		  , last_executed_at
		  , created_at
		  , template_slug`

// AutomationRepository handles automation-related database operations.
type AutomationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAutomationRepository creates a new automation repository.
func NewAutomationRepository(db *sql.DB, logger *slog.Logger) *AutomationRepository {
	return &AutomationRepository{db: db, logger: logger}
}

// GetAll returns all automations in creation order.
func (r *AutomationRepository) GetAll(ctx context.Context) ([]*models.Automation, error) {
	query := `SELECT` + automationColumns + `
		FROM automations
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	automations := make([]*models.Automation, 0)

	for rows.Next() {
		automation, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation: %w", err)
		}

		automations = append(automations, automation)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating automations: %w", err)
	}

	return automations, nil
}

func (r *AutomationRepository) GetByID(ctx context.Context, id string) (*models.Automation, error) {
	query := `SELECT` + automationColumns + `
		FROM automations
		WHERE id = $1
	`

	automation, err := scanAutomation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan automation: %w", err)
	}

	return automation, nil
}

// Save inserts or updates an automation.
func (r *AutomationRepository) Save(ctx context.Context, automation *models.Automation) error {
	config := automation.Config
	if config == nil {
		config = map[string]string{}
	}

	configJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal automation config: %w", err)
	}

	query := `
		INSERT INTO automations (` + automationColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , config = EXCLUDED.config
		  , status = EXCLUDED.status
		  , execution_count = EXCLUDED.execution_count
		  , success_count = EXCLUDED.success_count
		  , failure_count = EXCLUDED.failure_count
		  , success_rate = EXCLUDED.success_rate
		  , last_executed_at = EXCLUDED.last_executed_at
	`

	_, err = r.db.ExecContext(ctx, query,
		automation.ID,
		automation.PID,
		automation.Name,
		automation.Description,
		automation.EventType,
		automation.EventLabel,
		string(automation.ActionType),
		automation.ActionLabel,
		configJSON,
		string(automation.Status),
		automation.ExecutionCount,
		automation.SuccessCount,
		automation.FailureCount,
		automation.SuccessRate,
		nullTime(automation.LastExecutedAt),
		automation.CreatedAt,
		nullString(automation.TemplateSlug),
	)
	if err != nil {
		return persistence.NewAutomationError("Save", automation.ID, err)
	}

	return nil
}

// Delete removes an automation. Its executions are removed by the foreign key cascade.
func (r *AutomationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM automations WHERE id = $1`, id)
	if err != nil {
		return persistence.NewAutomationError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewAutomationError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewAutomationError("Delete", id, persistence.ErrAutomationNotFound)
	}

	return nil
}

func scanAutomation(row rowScanner) (*models.Automation, error) {
	var (
		automation     models.Automation
		actionType     string
		status         string
		configJSON     []byte
		lastExecutedAt sql.NullTime
		templateSlug   sql.NullString
	)

	err := row.Scan(
		&automation.ID,
		&automation.PID,
		&automation.Name,
		&automation.Description,
		&automation.EventType,
		&automation.EventLabel,
		&actionType,
		&automation.ActionLabel,
		&configJSON,
		&status,
		&automation.ExecutionCount,
		&automation.SuccessCount,
		&automation.FailureCount,
		&automation.SuccessRate,
		&lastExecutedAt,
		&automation.CreatedAt,
		&templateSlug,
	)
	if err != nil {
		return nil, err
	}

	automation.ActionType = models.ActionType(actionType)
	automation.Status = models.AutomationStatus(status)

	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &automation.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if lastExecutedAt.Valid {
		t := lastExecutedAt.Time.UTC()
		automation.LastExecutedAt = &t
	}

	if templateSlug.Valid {
		slug := templateSlug.String
		automation.TemplateSlug = &slug
	}

	automation.CreatedAt = automation.CreatedAt.UTC()

	return &automation, nil
}
