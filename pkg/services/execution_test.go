package services

import (
	"testing"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/eventbus"
	"github.com/dukex/autoflow/pkg/events"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecution_Record(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)

	execution, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusRunning, execution.Status)
	assert.Equal(t, env.clock.Now(), execution.StartedAt)
	assert.Nil(t, execution.CompletedAt)
	assert.Nil(t, execution.DurationMs)
	assert.Nil(t, execution.ErrorMessage)
	assert.Equal(t, orderPayload(), execution.TriggerData)
	assert.NoError(t, execution.Validate())

	updated, err := env.registry.Automations.FetchByID(t.Context(), automation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ExecutionCount)
	require.NotNil(t, updated.LastExecutedAt)
	assert.Equal(t, execution.StartedAt, *updated.LastExecutedAt)
}

func TestExecution_RecordRejections(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(t *testing.T, env *testEnv) string
		eventType string
		payload   models.TriggerData
		check     func(t *testing.T, err error)
	}{
		{
			name:      "unknown automation",
			prepare:   func(*testing.T, *testEnv) string { return "aut_404" },
			eventType: catalog.EventOrderCreated,
			payload:   orderPayload(),
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
			},
		},
		{
			name:      "unknown event type",
			prepare:   func(t *testing.T, env *testEnv) string { return env.createSlack(t).ID },
			eventType: "order_teleported",
			payload:   orderPayload(),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, catalog.ErrUnknownEventType)
				assert.True(t, IsValidationError(err))
			},
		},
		{
			name:      "event type of another trigger",
			prepare:   func(t *testing.T, env *testEnv) string { return env.createSlack(t).ID },
			eventType: catalog.EventContractSigned,
			payload:   models.TriggerData{"contract_id": "CTR-1", "company": "Acme"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEventTypeMismatch)
				assert.True(t, IsConflictError(err))
			},
		},
		{
			name: "paused automation",
			prepare: func(t *testing.T, env *testEnv) string {
				automation := env.createSlack(t)
				_, err := env.registry.Automations.Toggle(t.Context(), automation.ID)
				require.NoError(t, err)

				return automation.ID
			},
			eventType: catalog.EventOrderCreated,
			payload:   orderPayload(),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrAutomationPaused)
				assert.True(t, IsConflictError(err))
			},
		},
		{
			name:      "payload missing required keys",
			prepare:   func(t *testing.T, env *testEnv) string { return env.createSlack(t).ID },
			eventType: catalog.EventOrderCreated,
			payload:   models.TriggerData{"order_id": "ORD-1", "amount": "a lot"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, schema.ErrInvalidPayload)
				assert.True(t, IsValidationError(err))

				var perr *schema.PayloadError
				require.ErrorAs(t, err, &perr)
				assert.Len(t, perr.Violations, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			id := tt.prepare(t, env)

			execution, err := env.registry.Executions.Record(t.Context(), id, tt.eventType, tt.payload)
			require.Error(t, err)
			assert.Nil(t, execution)
			tt.check(t, err)

			all, err := env.store.ExecutionRepository().GetAll(t.Context())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestExecution_CustomAutomationAcceptsAnyEvent(t *testing.T) {
	env := newTestEnv(t)

	automation, err := env.registry.Automations.CreateCustom(t.Context(), "Manual", "")
	require.NoError(t, err)

	execution, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventContractSigned,
		models.TriggerData{"contract_id": "CTR-1", "company": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, catalog.EventContractSigned, execution.EventType)
}

func TestExecution_CompleteSuccess(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)

	execution, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	env.clock.Advance(1500 * time.Millisecond)

	completed, err := env.registry.Executions.Complete(t.Context(), execution.ID, models.ExecutionStatusSuccess, "ignored")
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusSuccess, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, env.clock.Now(), *completed.CompletedAt)
	require.NotNil(t, completed.DurationMs)
	assert.Equal(t, int64(1500), *completed.DurationMs)
	assert.Nil(t, completed.ErrorMessage)
	assert.NoError(t, completed.Validate())

	updated, err := env.registry.Automations.FetchByID(t.Context(), automation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.SuccessCount)
	assert.InDelta(t, 100.0, updated.SuccessRate, 0.001)

	env.bus.AssertCalled(t, "Publish", mock.Anything, automation.ID, mock.MatchedBy(func(e eventbus.Event) bool {
		done, ok := e.(*events.ExecutionCompleted)

		return ok && done.ExecutionID == execution.ID && done.DurationMs == 1500
	}))
}

func TestExecution_CompleteFailure(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)

	first, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)
	second, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	failed, err := env.registry.Executions.Complete(t.Context(), first.ID, models.ExecutionStatusFailed, "Slack webhook returned 403")
	require.NoError(t, err)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "Slack webhook returned 403", *failed.ErrorMessage)

	defaulted, err := env.registry.Executions.Complete(t.Context(), second.ID, models.ExecutionStatusFailed, "")
	require.NoError(t, err)
	require.NotNil(t, defaulted.ErrorMessage)
	assert.Equal(t, "execution failed", *defaulted.ErrorMessage)

	updated, err := env.registry.Automations.FetchByID(t.Context(), automation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.FailureCount)
	assert.InDelta(t, 0.0, updated.SuccessRate, 0.001)
}

func TestExecution_TerminalRecordsAreImmutable(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)

	execution, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	_, err = env.registry.Executions.Complete(t.Context(), execution.ID, models.ExecutionStatusSuccess, "")
	require.NoError(t, err)

	_, err = env.registry.Executions.Complete(t.Context(), execution.ID, models.ExecutionStatusFailed, "late failure")
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.True(t, IsConflictError(err))

	stored, err := env.registry.Executions.FetchByID(t.Context(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, stored.Status)
	assert.Nil(t, stored.ErrorMessage)

	updated, err := env.registry.Automations.FetchByID(t.Context(), automation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.SuccessCount)
	assert.Equal(t, int64(0), updated.FailureCount)
}

func TestExecution_CompleteRejectsNonTerminalOutcome(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.registry.Executions.Complete(t.Context(), "exe_1", models.ExecutionStatusRunning, "")
	require.ErrorIs(t, err, ErrInvalidOutcome)
	assert.True(t, IsValidationError(err))

	_, err = env.registry.Executions.Complete(t.Context(), "exe_404", models.ExecutionStatusSuccess, "")
	assert.True(t, IsNotFound(err))
}

func TestExecution_EnqueueStartComplete(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)

	pending, err := env.registry.Executions.Enqueue(t.Context(), "evt-1", automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusPending, pending.Status)
	assert.Equal(t, "evt-1", pending.EventID)

	_, err = env.registry.Executions.Complete(t.Context(), pending.ID, models.ExecutionStatusSuccess, "")
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	env.clock.Advance(time.Second)

	running, err := env.registry.Executions.Start(t.Context(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, running.Status)
	assert.Equal(t, env.clock.Now(), running.StartedAt)

	_, err = env.registry.Executions.Start(t.Context(), pending.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	env.clock.Advance(250 * time.Millisecond)

	done, err := env.registry.Executions.Complete(t.Context(), pending.ID, models.ExecutionStatusSuccess, "")
	require.NoError(t, err)
	assert.Equal(t, int64(250), *done.DurationMs)
}

func TestExecution_EnqueueOncePerEvent(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)
	other := env.createSlack(t)

	first, err := env.registry.Executions.Enqueue(t.Context(), "evt-1", automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	_, err = env.registry.Executions.Enqueue(t.Context(), "evt-1", automation.ID, catalog.EventOrderCreated, orderPayload())
	require.ErrorIs(t, err, ErrAlreadyFired)
	assert.True(t, IsConflictError(err))
	assert.Contains(t, err.Error(), first.ID)

	_, err = env.registry.Executions.Enqueue(t.Context(), "evt-1", other.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	_, err = env.registry.Executions.Enqueue(t.Context(), "evt-2", automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	// Manual records carry no event ID and are never deduplicated.
	for range 2 {
		_, err = env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
		require.NoError(t, err)
	}

	history, err := env.registry.Executions.ListForAutomation(t.Context(), automation.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)

	updated, err := env.registry.Automations.FetchByID(t.Context(), automation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.ExecutionCount)
}

func TestExecution_CompleteAfterPause(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)

	execution, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	_, err = env.registry.Automations.Toggle(t.Context(), automation.ID)
	require.NoError(t, err)

	_, err = env.registry.Executions.Complete(t.Context(), execution.ID, models.ExecutionStatusSuccess, "")
	require.NoError(t, err)
}

func TestExecution_NineOfTenSucceed(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)

	for i := range 10 {
		execution, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
		require.NoError(t, err)

		outcome := models.ExecutionStatusSuccess
		if i == 4 {
			outcome = models.ExecutionStatusFailed
		}

		_, err = env.registry.Executions.Complete(t.Context(), execution.ID, outcome, "timeout")
		require.NoError(t, err)
	}

	_, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	updated, err := env.registry.Automations.FetchByID(t.Context(), automation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), updated.ExecutionCount)
	assert.InDelta(t, 90.0, updated.SuccessRate, 0.001)

	stats, err := env.registry.Executions.Stats(t.Context())
	require.NoError(t, err)
	assert.InDelta(t, 90.0, stats.SuccessRate, 0.001)
	assert.Equal(t, 11, stats.ExecutionsToday)
	assert.Equal(t, 1, stats.TotalAutomations)
	assert.Equal(t, 1, stats.ActiveAutomations)
}

func TestExecution_StatsWithoutExecutions(t *testing.T) {
	env := newTestEnv(t)
	env.createSlack(t)

	stats, err := env.registry.Executions.Stats(t.Context())
	require.NoError(t, err)
	assert.InDelta(t, 100.0, stats.SuccessRate, 0.001)
	assert.Equal(t, 0, stats.ExecutionsToday)
	assert.Equal(t, 0, stats.ExecutionsThisWeek)
}

func TestExecution_ListForAutomationIsMostRecentFirst(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)
	other := env.createSlack(t)

	ids := make([]string, 0, 3)

	for range 3 {
		execution, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
		require.NoError(t, err)

		ids = append(ids, execution.ID)

		env.clock.Advance(time.Minute)
	}

	_, err := env.registry.Executions.Record(t.Context(), other.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	history, err := env.registry.Executions.ListForAutomation(t.Context(), automation.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[1], history[1].ID)
	assert.Equal(t, ids[0], history[2].ID)

	_, err = env.registry.Executions.ListForAutomation(t.Context(), "aut_404")
	assert.True(t, IsNotFound(err))
}

func TestExecution_List(t *testing.T) {
	env := newTestEnv(t)
	automation := env.createSlack(t)
	other := env.createSlack(t)

	first, err := env.registry.Executions.Record(t.Context(), automation.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	env.clock.Advance(time.Minute)

	second, err := env.registry.Executions.Record(t.Context(), other.ID, catalog.EventOrderCreated, orderPayload())
	require.NoError(t, err)

	_, err = env.registry.Executions.Complete(t.Context(), first.ID, models.ExecutionStatusFailed, "boom")
	require.NoError(t, err)

	all, err := env.registry.Executions.List(t.Context(), ExecutionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	failed, err := env.registry.Executions.List(t.Context(), ExecutionFilter{Status: models.ExecutionStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, first.ID, failed[0].ID)

	byAutomation, err := env.registry.Executions.List(t.Context(), ExecutionFilter{AutomationID: other.ID})
	require.NoError(t, err)
	require.Len(t, byAutomation, 1)
	assert.Equal(t, second.ID, byAutomation[0].ID)

	_, err = env.registry.Executions.List(t.Context(), ExecutionFilter{Status: "exploded"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
