package fixtures

import (
	"testing"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence/memory"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/dukex/autoflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

func TestDefault_IsValid(t *testing.T) {
	seed := Default(now)

	require.NoError(t, seed.Validate(catalog.Default().Has))
	require.Len(t, seed.Automations, 6)

	for i, automation := range seed.Automations {
		assert.Equal(t, []string{"aut_001", "aut_002", "aut_003", "aut_004", "aut_005", "aut_006"}[i], automation.ID)
	}

	assert.True(t, seed.Automations[5].IsCustom())
	assert.Equal(t, models.AutomationStatusPaused, seed.Automations[2].Status)
}

func TestDefault_PayloadsMatchSchemas(t *testing.T) {
	schemas := schema.Default()

	for _, execution := range Default(now).Executions {
		assert.NoError(t, schemas.ValidatePayload(execution.EventType, execution.TriggerData), execution.ID)
	}
}

func TestDefault_TalliesMatchHistory(t *testing.T) {
	seed := Default(now)

	for _, automation := range seed.Automations {
		var count, success, failed int64

		for _, execution := range seed.Executions {
			if execution.AutomationID != automation.ID {
				continue
			}

			count++

			switch execution.Status {
			case models.ExecutionStatusSuccess:
				success++
			case models.ExecutionStatusFailed:
				failed++
			}
		}

		assert.Equal(t, count, automation.ExecutionCount, automation.ID)
		assert.Equal(t, models.SuccessRate(success, failed), automation.SuccessRate, automation.ID)
	}
}

func TestDefault_LoadsIntoRegistry(t *testing.T) {
	registry := services.NewRegistry(
		memory.NewPersistence(Default(now).MemoryOptions()...),
		catalog.Default(),
		schema.Default(),
		services.WithClock(func() time.Time { return now }),
	)

	stats, err := registry.Executions.Stats(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalAutomations)
	assert.Equal(t, 5, stats.ActiveAutomations)
	assert.Equal(t, 5, stats.ExecutionsToday)
	assert.InDelta(t, 77.8, stats.SuccessRate, 0.001)

	history, err := registry.Executions.ListForAutomation(t.Context(), "aut_001")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, models.ExecutionStatusRunning, history[0].Status)
}

func TestSeed_ValidateRejectsDanglingExecution(t *testing.T) {
	seed := Default(now)
	seed.Executions[0].AutomationID = "aut_404"

	assert.ErrorContains(t, seed.Validate(nil), "unknown automation aut_404")
}

func TestSeed_ValidateRejectsDuplicates(t *testing.T) {
	seed := Default(now)
	seed.Automations = append(seed.Automations, seed.Automations[0])

	assert.ErrorContains(t, seed.Validate(nil), "duplicate seed automation aut_001")
}

func TestSeed_ApplyIsIdempotent(t *testing.T) {
	p := memory.NewPersistence()
	seed := Default(now)

	saved, err := seed.Apply(t.Context(), p)
	require.NoError(t, err)
	assert.Equal(t, len(seed.Automations)+len(seed.Executions), saved)

	renamed := seed.Automations[0].Clone()
	renamed.Name = "Renamed by an operator"
	require.NoError(t, p.AutomationRepository().Save(t.Context(), renamed))

	saved, err = seed.Apply(t.Context(), p)
	require.NoError(t, err)
	assert.Zero(t, saved)

	fetched, err := p.AutomationRepository().GetByID(t.Context(), "aut_001")
	require.NoError(t, err)
	assert.Equal(t, "Renamed by an operator", fetched.Name)
}
