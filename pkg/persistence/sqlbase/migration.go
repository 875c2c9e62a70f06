// Package sqlbase provides the schema migration runner shared by SQL stores.
package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

var ErrInvalidMigrations = errors.New("invalid migration set")

// Migration is one forward-only schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationManager applies pending migrations, each in its own transaction,
// and records them in schema_migrations.
type MigrationManager struct {
	db         *sql.DB
	logger     *slog.Logger
	migrations []Migration
}

// NewMigrationManager sorts migrations by version. Versions must be positive
// and unique.
func NewMigrationManager(logger *slog.Logger, db *sql.DB, migrations []Migration) (*MigrationManager, error) {
	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int { return a.Version - b.Version })

	for i, m := range sorted {
		if m.Version <= 0 {
			return nil, fmt.Errorf("%w: version %d is not positive", ErrInvalidMigrations, m.Version)
		}

		if i > 0 && sorted[i-1].Version == m.Version {
			return nil, fmt.Errorf("%w: duplicate version %d", ErrInvalidMigrations, m.Version)
		}
	}

	return &MigrationManager{
		db:         db,
		logger:     logger.With("module", "migrations"),
		migrations: sorted,
	}, nil
}

// LatestVersion returns the highest known version, 0 when there are none.
func (m *MigrationManager) LatestVersion() int {
	if len(m.migrations) == 0 {
		return 0
	}

	return m.migrations[len(m.migrations)-1].Version
}

// RunMigrations brings the schema to LatestVersion.
func (m *MigrationManager) RunMigrations(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int

	err = m.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to query current schema version: %w", err)
	}

	m.logger.InfoContext(ctx, "Checking database schema", "version", current, "latest", m.LatestVersion())

	for _, migration := range m.migrations {
		if migration.Version <= current {
			continue
		}

		if err := m.apply(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}

func (m *MigrationManager) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
	}

	_, err = tx.ExecContext(ctx, migration.SQL)
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("failed to execute migration %d (%s): %w", migration.Version, migration.Name, err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
		migration.Version, migration.Name)
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}

	m.logger.InfoContext(ctx, "Migration applied", "version", migration.Version, "name", migration.Name)

	return nil
}
