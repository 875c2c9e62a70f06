// Package config provides configuration loading for seed files
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/dukex/autoflow/pkg/fixtures"
	"github.com/dukex/autoflow/pkg/models"
	"gopkg.in/yaml.v3"
)

// LoadSeedFile loads an initial store state from a YAML file
func LoadSeedFile(filepath string, lookup models.TemplateLookup) (*fixtures.Seed, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", filepath, err)
	}

	return ParseSeed(data, lookup)
}

// ParseSeed decodes a YAML seed document and fills the fields a hand-written
// file usually leaves out.
func ParseSeed(data []byte, lookup models.TemplateLookup) (*fixtures.Seed, error) {
	var seed fixtures.Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML seed: %w", err)
	}

	for _, automation := range seed.Automations {
		if automation.Status == "" {
			automation.Status = models.AutomationStatusActive
		}

		if automation.Config == nil {
			automation.Config = map[string]string{}
		}

		if automation.ActionLabel == "" && automation.ActionType != "" {
			automation.ActionLabel = automation.ActionType.Label()
		}

		if automation.SuccessCount+automation.FailureCount == 0 && automation.SuccessRate == 0 {
			automation.SuccessRate = 100
		}

		automation.CreatedAt = automation.CreatedAt.UTC()
	}

	for _, execution := range seed.Executions {
		execution.EventType = strings.TrimSpace(execution.EventType)
		execution.StartedAt = execution.StartedAt.UTC()
	}

	if err := seed.Validate(lookup); err != nil {
		return nil, err
	}

	return &seed, nil
}
