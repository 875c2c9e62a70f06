package postgresql

import "github.com/dukex/autoflow/pkg/persistence/sqlbase"

func migrations() []sqlbase.Migration {
	return []sqlbase.Migration{
		{Version: 1, Name: "create_automations", SQL: `
			CREATE TABLE automations (
				id VARCHAR(64) PRIMARY KEY,
				pid VARCHAR(64) NOT NULL UNIQUE,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				event_type VARCHAR(100) NOT NULL DEFAULT '',
				event_label VARCHAR(255) NOT NULL DEFAULT '',
				action_type VARCHAR(50) NOT NULL DEFAULT '',
				action_label VARCHAR(255) NOT NULL DEFAULT '',
				config JSONB NOT NULL DEFAULT '{}',
				status VARCHAR(20) NOT NULL CHECK (status IN ('active', 'paused')),
				execution_count BIGINT NOT NULL DEFAULT 0 CHECK (execution_count >= 0),
				success_count BIGINT NOT NULL DEFAULT 0,
				failure_count BIGINT NOT NULL DEFAULT 0,
				success_rate DOUBLE PRECISION NOT NULL DEFAULT 100 CHECK (success_rate BETWEEN 0 AND 100),
				last_executed_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				template_slug VARCHAR(100)
			);

			CREATE INDEX idx_automations_status ON automations(status);
			CREATE INDEX idx_automations_event_type ON automations(event_type);
			CREATE INDEX idx_automations_created_at ON automations(created_at);
		`},
		{Version: 2, Name: "create_automation_executions", SQL: `
			CREATE TABLE automation_executions (
				id VARCHAR(64) PRIMARY KEY,
				automation_id VARCHAR(64) NOT NULL REFERENCES automations(id) ON DELETE CASCADE,
				event_type VARCHAR(100) NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'running', 'success', 'failed')),
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				duration_ms BIGINT,
				error_message TEXT,
				trigger_data JSONB NOT NULL DEFAULT '{}',
				CHECK (completed_at IS NULL OR completed_at >= started_at),
				CHECK ((error_message IS NOT NULL) = (status = 'failed'))
			);

			CREATE INDEX idx_automation_executions_automation ON automation_executions(automation_id, started_at DESC);
			CREATE INDEX idx_automation_executions_started_at ON automation_executions(started_at);
		`},
		{Version: 3, Name: "add_execution_event_id", SQL: `
			ALTER TABLE automation_executions ADD COLUMN event_id VARCHAR(64) NOT NULL DEFAULT '';

			CREATE UNIQUE INDEX idx_automation_executions_event
				ON automation_executions(automation_id, event_id)
				WHERE event_id <> '';
		`},
	}
}
