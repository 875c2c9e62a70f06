package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/autoflow/pkg/log"
	"github.com/dukex/autoflow/pkg/template"
)

// LogDispatcher renders the automation config against the trigger data and
// logs the delivery it would perform.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, req Request) error {
	logger := log.FromContext(ctx, d.logger).With("action_type", req.ActionType, "automation_id", req.AutomationID)

	rendered, err := template.RenderConfig(req.Config, req.TriggerData)
	if err != nil {
		return &ExecutionError{
			ActionType: req.ActionType,
			Message:    fmt.Sprintf("%s action: %v", req.ActionType.Label(), err),
			Err:        err,
		}
	}

	logger.InfoContext(ctx, "Dispatching action", "config", rendered)

	return nil
}
