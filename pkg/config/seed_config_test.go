package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
automations:
  - id: aut_101
    name: Orders to Slack
    event_type: order_created
    event_label: Order Created
    action_type: slack
    template_slug: slack-order-created
    created_at: 2026-02-01T09:00:00Z
    config:
      webhookUrl: https://hooks.slack.com/x
      channel: "#orders"
  - id: aut_102
    name: Manual review
    status: paused
    created_at: 2026-02-02T09:00:00Z
executions:
  - id: exe_101
    automation_id: aut_101
    event_type: order_created
    status: success
    started_at: 2026-02-03T10:00:00Z
    completed_at: 2026-02-03T10:00:01Z
    duration_ms: 1000
    trigger_data:
      order_id: ORD-1
      company: Acme
      amount: 10
`

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	seed, err := LoadSeedFile(path, catalog.Default().Has)
	require.NoError(t, err)

	require.Len(t, seed.Automations, 2)
	require.Len(t, seed.Executions, 1)

	orders := seed.Automations[0]
	assert.Equal(t, models.AutomationStatusActive, orders.Status)
	assert.Equal(t, "Slack", orders.ActionLabel)
	assert.Equal(t, 100.0, orders.SuccessRate)
	assert.Equal(t, "#orders", orders.Config["channel"])
	require.NotNil(t, orders.TemplateSlug)
	assert.Equal(t, catalog.SlugSlackOrderCreated, *orders.TemplateSlug)

	manual := seed.Automations[1]
	assert.True(t, manual.IsCustom())
	assert.Equal(t, models.AutomationStatusPaused, manual.Status)
	assert.NotNil(t, manual.Config)

	execution := seed.Executions[0]
	assert.Equal(t, time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC), execution.StartedAt)
	assert.Equal(t, "ORD-1", execution.TriggerData.String("order_id"))
}

func TestLoadSeedFile_Missing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorContains(t, err, "failed to read seed file")
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "malformed", yaml: "automations: [", want: "failed to parse YAML seed"},
		{name: "unknown template", yaml: "automations:\n  - id: a\n    name: x\n    template_slug: nope\n", want: `template "nope" does not exist`},
		{name: "bad status", yaml: "automations:\n  - id: a\n    name: x\n    status: sleeping\n", want: "invalid status"},
		{name: "dangling execution", yaml: "executions:\n  - id: e\n    automation_id: ghost\n    status: pending\n", want: "unknown automation ghost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.yaml), catalog.Default().Has)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
