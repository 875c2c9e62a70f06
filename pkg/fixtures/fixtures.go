// Package fixtures holds the demo dataset loaded with --seed.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/autoflow/pkg/catalog"
	"github.com/dukex/autoflow/pkg/models"
	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/dukex/autoflow/pkg/persistence/memory"
)

// Seed is an initial store state.
type Seed struct {
	Automations []*models.Automation         `yaml:"automations"`
	Executions  []*models.AutomationExecution `yaml:"executions"`
}

// MemoryOptions returns the options that load the seed into a memory store.
func (s *Seed) MemoryOptions() []memory.Option {
	return []memory.Option{
		memory.WithAutomations(s.Automations...),
		memory.WithExecutions(s.Executions...),
	}
}

// Validate checks every record and that executions reference seeded
// automations.
func (s *Seed) Validate(lookup models.TemplateLookup) error {
	known := make(map[string]bool, len(s.Automations))

	for _, automation := range s.Automations {
		if automation.ID == "" {
			return fmt.Errorf("seed automation %q has no id", automation.Name)
		}

		if known[automation.ID] {
			return fmt.Errorf("duplicate seed automation %s", automation.ID)
		}

		if err := automation.Validate(lookup); err != nil {
			return fmt.Errorf("seed automation %s: %w", automation.ID, err)
		}

		known[automation.ID] = true
	}

	seen := make(map[string]bool, len(s.Executions))

	for _, execution := range s.Executions {
		if seen[execution.ID] {
			return fmt.Errorf("duplicate seed execution %s", execution.ID)
		}

		if !known[execution.AutomationID] {
			return fmt.Errorf("seed execution %s references unknown automation %s", execution.ID, execution.AutomationID)
		}

		if err := execution.Validate(); err != nil {
			return fmt.Errorf("seed execution %s: %w", execution.ID, err)
		}

		seen[execution.ID] = true
	}

	return nil
}

type run struct {
	automationID string
	ago          time.Duration
	took         time.Duration
	failure      string
	data         models.TriggerData
}

// Default builds the demo dataset with timestamps relative to now, so the
// dashboard shows activity for today and this week.
func Default(now time.Time) *Seed {
	now = now.UTC()
	day := 24 * time.Hour

	automations := []*models.Automation{
		fromTemplate("aut_001", catalog.SlugSlackOrderCreated, "New order alerts", now.Add(-21*day), map[string]string{
			"webhookUrl":      "https://hooks.slack.com/services/T000/B000/demo",
			"channel":         "#orders",
			"messageTemplate": "New order {{order_id}} from {{company}} for ${{amount}}",
		}),
		fromTemplate("aut_002", catalog.SlugSlackPaymentFailed, "Collections: failed payments", now.Add(-18*day), map[string]string{
			"webhookUrl": "https://hooks.slack.com/services/T000/B001/demo",
			"channel":    "#collections",
		}),
		fromTemplate("aut_003", catalog.SlugEmailContractActive, "Contract activation email", now.Add(-14*day), map[string]string{
			"recipient": "accounts@example.com",
			"subject":   "Contract {{contract_id}} is now active",
		}),
		fromTemplate("aut_004", catalog.SlugWebhookOrderStatus, "ERP order status sync", now.Add(-10*day), map[string]string{
			"url":    "https://erp.example.com/hooks/orders",
			"method": "POST",
		}),
		fromTemplate("aut_005", catalog.SlugCRMCustomerCreated, "HubSpot contact sync", now.Add(-7*day), map[string]string{
			"crmProvider": "hubspot",
			"apiKey":      "demo-key",
			"pipeline":    "Merchants",
		}),
		{
			ID:          "aut_006",
			PID:         "5d1c7f0e-6f43-4d7e-9a51-2f5a8f7d0c06",
			Name:        "Weekly merchant digest",
			Description: "Hand-built summary of merchant activity.",
			Config:      map[string]string{},
			Status:      models.AutomationStatusActive,
			SuccessRate: 100,
			CreatedAt:   now.Add(-3 * day),
		},
	}

	automations[2].Status = models.AutomationStatusPaused

	runs := []run{
		{automationID: "aut_001", ago: 6 * day, took: 420 * time.Millisecond, data: order("ORD-10231", "Acme Dental", 4200)},
		{automationID: "aut_001", ago: 2 * day, took: 380 * time.Millisecond, data: order("ORD-10244", "Summit HVAC", 12850.75)},
		{automationID: "aut_001", ago: 3 * time.Hour, took: 510 * time.Millisecond, data: order("ORD-10257", "Harbor Med Spa", 980.5)},
		{automationID: "aut_002", ago: 4 * day, took: 610 * time.Millisecond, data: payment("TXN-55012", "Brightside Auto", 350)},
		{
			automationID: "aut_002", ago: 1 * time.Hour, took: 5 * time.Second,
			failure: "slack webhook returned 500", data: payment("TXN-55020", "Acme Dental", 1200),
		},
		{
			automationID: "aut_003", ago: 9 * day, took: 930 * time.Millisecond,
			data: models.TriggerData{"contract_id": "CTR-3001", "company": "Northwind Solar", "amount": 25000.0},
		},
		{
			automationID: "aut_004", ago: 5 * day, took: 150 * time.Millisecond,
			data: models.TriggerData{"order_id": "ORD-10231", "company": "Acme Dental", "status": "shipped"},
		},
		{
			automationID: "aut_004", ago: 30 * time.Minute, took: 2 * time.Second, failure: "endpoint timed out",
			data: models.TriggerData{"order_id": "ORD-10257", "company": "Harbor Med Spa", "status": "approved"},
		},
		{
			automationID: "aut_005", ago: 20 * time.Minute, took: 800 * time.Millisecond,
			data: models.TriggerData{"customer_id": "CUS-881", "customer": "Priya Raman", "company": "Summit HVAC"},
		},
	}

	byID := make(map[string]*models.Automation, len(automations))
	for _, automation := range automations {
		byID[automation.ID] = automation
	}

	executions := make([]*models.AutomationExecution, 0, len(runs)+1)

	for i, r := range runs {
		automation := byID[r.automationID]
		execution := finished(fmt.Sprintf("exe_%03d", i+1), automation, now.Add(-r.ago), r.took, r.failure, r.data)
		executions = append(executions, execution)

		automation.ExecutionCount++
		automation.RecordOutcome(execution.Status)

		if automation.LastExecutedAt == nil || execution.StartedAt.After(*automation.LastExecutedAt) {
			startedAt := execution.StartedAt
			automation.LastExecutedAt = &startedAt
		}
	}

	// One firing still in flight.
	inFlight := now.Add(-5 * time.Second)
	executions = append(executions, &models.AutomationExecution{
		ID:           fmt.Sprintf("exe_%03d", len(runs)+1),
		AutomationID: "aut_001",
		EventType:    catalog.EventOrderCreated,
		Status:       models.ExecutionStatusRunning,
		StartedAt:    inFlight,
		TriggerData:  order("ORD-10262", "Brightside Auto", 640),
	})
	byID["aut_001"].ExecutionCount++
	byID["aut_001"].LastExecutedAt = &inFlight

	return &Seed{Automations: automations, Executions: executions}
}

func fromTemplate(id, slug, name string, createdAt time.Time, config map[string]string) *models.Automation {
	tmpl, ok := catalog.Default().GetTemplate(slug)
	if !ok {
		panic("fixture references unknown template " + slug)
	}

	return &models.Automation{
		ID:           id,
		PID:          "5d1c7f0e-6f43-4d7e-9a51-2f5a8f7d0c" + id[len(id)-2:],
		Name:         name,
		Description:  tmpl.Description,
		EventType:    tmpl.EventType,
		EventLabel:   tmpl.EventLabel,
		ActionType:   tmpl.ActionType,
		ActionLabel:  tmpl.ActionType.Label(),
		Config:       config,
		Status:       models.AutomationStatusActive,
		SuccessRate:  100,
		CreatedAt:    createdAt,
		TemplateSlug: &slug,
	}
}

func finished(
	id string,
	automation *models.Automation,
	startedAt time.Time,
	took time.Duration,
	failure string,
	data models.TriggerData,
) *models.AutomationExecution {
	completedAt := startedAt.Add(took)
	durationMs := took.Milliseconds()

	execution := &models.AutomationExecution{
		ID:           id,
		AutomationID: automation.ID,
		EventType:    automation.EventType,
		Status:       models.ExecutionStatusSuccess,
		StartedAt:    startedAt,
		CompletedAt:  &completedAt,
		DurationMs:   &durationMs,
		TriggerData:  data,
	}

	if failure != "" {
		execution.Status = models.ExecutionStatusFailed
		execution.ErrorMessage = &failure
	}

	return execution
}

func order(id, company string, amount float64) models.TriggerData {
	return models.TriggerData{"order_id": id, "company": company, "amount": amount}
}

func payment(id, company string, amount float64) models.TriggerData {
	return models.TriggerData{"transaction_id": id, "company": company, "amount": amount}
}

// Apply saves the seed records that p does not already hold. Existing
// records with the same ID are left untouched.
func (s *Seed) Apply(ctx context.Context, p persistence.Persistence) (int, error) {
	saved := 0

	for _, automation := range s.Automations {
		existing, err := p.AutomationRepository().GetByID(ctx, automation.ID)
		if err != nil {
			return saved, err
		}

		if existing != nil {
			continue
		}

		if err := p.AutomationRepository().Save(ctx, automation); err != nil {
			return saved, err
		}

		saved++
	}

	for _, execution := range s.Executions {
		existing, err := p.ExecutionRepository().GetByID(ctx, execution.ID)
		if err != nil {
			return saved, err
		}

		if existing != nil {
			continue
		}

		if err := p.ExecutionRepository().Save(ctx, execution); err != nil {
			return saved, err
		}

		saved++
	}

	return saved, nil
}
