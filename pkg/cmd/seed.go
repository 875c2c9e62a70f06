package cmd

import (
	"time"

	"github.com/dukex/autoflow/pkg/config"
	"github.com/dukex/autoflow/pkg/fixtures"
)

// LoadSeed resolves the --seed and --seed-file flags. A seed file wins over
// the built-in demo data.
func LoadSeed(seedFile string, demo bool, lookup func(string) bool, now func() time.Time) (*fixtures.Seed, error) {
	if seedFile != "" {
		return config.LoadSeedFile(seedFile, lookup)
	}

	if demo {
		return fixtures.Default(now()), nil
	}

	return nil, nil
}
