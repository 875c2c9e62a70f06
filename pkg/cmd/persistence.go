// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/autoflow/pkg/fixtures"
	"github.com/dukex/autoflow/pkg/persistence"
	"github.com/dukex/autoflow/pkg/persistence/file"
	"github.com/dukex/autoflow/pkg/persistence/memory"
	"github.com/dukex/autoflow/pkg/persistence/postgresql"
)

var supportedPersistenceProviders = []string{"memory", "file", "postgres", "postgresql"}

// NewPersistence picks the store from the URL scheme. An empty URL selects the
// in-memory store. seed may be nil.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string, seed *fixtures.Seed) (persistence.Persistence, error) {
	provider, err := parsePersistenceProvider(databaseURL)
	if err != nil {
		return nil, err
	}

	var p persistence.Persistence

	switch provider {
	case "memory":
		var opts []memory.Option
		if seed != nil {
			opts = seed.MemoryOptions()
		}

		return memory.NewPersistence(opts...), nil
	case "postgres", "postgresql":
		p, err = postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}
	default:
		p = file.NewPersistence(databaseURL)
	}

	if seed != nil {
		saved, err := seed.Apply(ctx, p)
		if err != nil {
			_ = p.Close(ctx)

			return nil, fmt.Errorf("failed to seed %s persistence: %w", provider, err)
		}

		logger.InfoContext(ctx, "Seed applied", "provider", provider, "records", saved)
	}

	return p, nil
}

func parsePersistenceProvider(databaseURL string) (string, error) {
	if databaseURL == "" || databaseURL == "memory" {
		return "memory", nil
	}

	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "", fmt.Errorf("database URL %q has no scheme, expected one of %v", databaseURL, supportedPersistenceProviders)
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider, nil
		}
	}

	return "", fmt.Errorf("unsupported persistence provider %q, expected one of %v", provider, supportedPersistenceProviders)
}
