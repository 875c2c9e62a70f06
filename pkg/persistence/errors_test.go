package persistence_test

import (
	"errors"
	"testing"

	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		automationErr := persistence.NewAutomationError("GetByID", "aut_001", persistence.ErrAutomationNotFound)
		executionErr := persistence.NewExecutionError("Complete", "exe_001", persistence.ErrExecutionNotFound)

		assert.True(t, persistence.IsAutomationNotFound(automationErr))
		assert.True(t, persistence.IsExecutionNotFound(executionErr))
		assert.True(t, persistence.IsNotFound(automationErr))
		assert.True(t, persistence.IsNotFound(executionErr))
		assert.False(t, persistence.IsExecutionNotFound(automationErr))

		assert.True(t, errors.Is(automationErr, persistence.ErrAutomationNotFound))
		assert.True(t, errors.Is(executionErr, persistence.ErrExecutionNotFound))
	})

	t.Run("automation error contains context", func(t *testing.T) {
		err := persistence.NewAutomationError("Toggle", "aut_003", persistence.ErrAutomationNotFound)

		assert.Contains(t, err.Error(), "Toggle")
		assert.Contains(t, err.Error(), "aut_003")
		assert.Contains(t, err.Error(), "automation not found")
	})

	t.Run("template not found", func(t *testing.T) {
		assert.True(t, persistence.IsTemplateNotFound(persistence.ErrTemplateNotFound))
		assert.False(t, persistence.IsTemplateNotFound(errors.New("other")))
	})
}
