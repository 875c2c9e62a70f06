package stats

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/dukex/autoflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

// Wednesday.
var now = time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC)

func execution(status models.ExecutionStatus, started time.Time) *models.AutomationExecution {
	return &models.AutomationExecution{Status: status, StartedAt: started}
}

func TestCompute_NoExecutions(t *testing.T) {
	result := Compute(nil, nil, now)

	assert.Equal(t, models.AutomationStats{SuccessRate: 100}, result)
}

func TestCompute_AutomationCounts(t *testing.T) {
	automations := []*models.Automation{
		{ID: "aut_001", Status: models.AutomationStatusActive},
		{ID: "aut_002", Status: models.AutomationStatusPaused},
		{ID: "aut_003", Status: models.AutomationStatusActive},
	}

	result := Compute(automations, nil, now)

	assert.Equal(t, 3, result.TotalAutomations)
	assert.Equal(t, 2, result.ActiveAutomations)
}

func TestCompute_SuccessRateIgnoresInFlight(t *testing.T) {
	executions := make([]*models.AutomationExecution, 0, 11)
	for range 9 {
		executions = append(executions, execution(models.ExecutionStatusSuccess, now.Add(-time.Hour)))
	}

	executions = append(executions,
		execution(models.ExecutionStatusFailed, now.Add(-time.Hour)),
		execution(models.ExecutionStatusRunning, now),
	)

	result := Compute(nil, executions, now)

	assert.InDelta(t, 90.0, result.SuccessRate, 0.001)
}

func TestCompute_OnlyInFlightReportsFullRate(t *testing.T) {
	result := Compute(nil, []*models.AutomationExecution{
		execution(models.ExecutionStatusPending, now),
		execution(models.ExecutionStatusRunning, now),
	}, now)

	assert.InDelta(t, 100.0, result.SuccessRate, 0.001)
	assert.Equal(t, 2, result.ExecutionsToday)
}

func TestCompute_DayAndWeekBoundaries(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	executions := []*models.AutomationExecution{
		execution(models.ExecutionStatusSuccess, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)),
		execution(models.ExecutionStatusSuccess, time.Date(2026, 3, 11, 23, 59, 59, 0, time.UTC)),
		execution(models.ExecutionStatusSuccess, time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)),
		execution(models.ExecutionStatusSuccess, monday),
		execution(models.ExecutionStatusSuccess, monday.Add(-time.Second)),
		// 23:30 in UTC-3 is the next day in UTC.
		execution(models.ExecutionStatusSuccess, time.Date(2026, 3, 10, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600))),
	}

	result := Compute(nil, executions, now)

	assert.Equal(t, 3, result.ExecutionsToday)
	assert.Equal(t, 5, result.ExecutionsThisWeek)
}

func TestCompute_OrderIndependent(t *testing.T) {
	executions := []*models.AutomationExecution{
		execution(models.ExecutionStatusSuccess, now),
		execution(models.ExecutionStatusFailed, now.Add(-24*time.Hour)),
		execution(models.ExecutionStatusSuccess, now.Add(-72*time.Hour)),
		execution(models.ExecutionStatusRunning, now.Add(-time.Minute)),
		execution(models.ExecutionStatusFailed, now.Add(-10*24*time.Hour)),
		execution(models.ExecutionStatusPending, now),
	}
	automations := []*models.Automation{
		{Status: models.AutomationStatusActive},
		{Status: models.AutomationStatusPaused},
	}

	expected := Compute(automations, executions, now)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 20 {
		shuffled := append([]*models.AutomationExecution(nil), executions...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assert.Equal(t, expected, Compute(automations, shuffled, now))
	}
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(now, now.Add(-15*time.Hour)))
	assert.False(t, SameDay(now, now.Add(9*time.Hour)))
}
