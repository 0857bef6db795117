package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Migrator brings a report database up to the current schema
type Migrator interface {
	Run(ctx context.Context) (applied int, err error)
}

// Step is one schema version. Statements run in order, one Exec each, so
// they work with drivers that reject multi-statement strings.
type Step struct {
	Version    int
	Name       string
	Statements []string
}

// Steps is the report schema history. The SQL stays within what SQLite and
// MySQL both accept.
var Steps = []Step{
	{
		Version: 1,
		Name:    "create reports",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS reports (
				id VARCHAR(36) NOT NULL PRIMARY KEY,
				created_at BIGINT NOT NULL,
				source VARCHAR(1024) NOT NULL,
				success BOOLEAN NOT NULL,
				outcome VARCHAR(32) NOT NULL,
				server_name VARCHAR(255) NOT NULL,
				server_package VARCHAR(255) NOT NULL,
				connection_status BOOLEAN NOT NULL,
				error_message TEXT,
				payload LONGTEXT NOT NULL
			)`,
		},
	},
	{
		Version: 2,
		Name:    "index reports by time",
		Statements: []string{
			`CREATE INDEX idx_reports_created_at ON reports (created_at)`,
		},
	},
}

// SchemaMigrator applies Steps and records them in schema_migrations
type SchemaMigrator struct {
	db    *sql.DB
	steps []Step
}

// NewSchemaMigrator creates a SchemaMigrator over db
func NewSchemaMigrator(db *sql.DB) *SchemaMigrator {
	return &SchemaMigrator{db: db, steps: Steps}
}

// Run applies every step not yet recorded and returns how many ran
func (m *SchemaMigrator) Run(ctx context.Context) (int, error) {
	if _, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		applied_at BIGINT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	for _, step := range m.steps {
		if applied[step.Version] {
			continue
		}
		if err := m.apply(ctx, step); err != nil {
			return count, fmt.Errorf("migration %d (%s): %w", step.Version, step.Name, err)
		}
		count++
	}
	return count, nil
}

// Applied returns the set of recorded versions
func (m *SchemaMigrator) Applied(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (m *SchemaMigrator) apply(ctx context.Context, step Step) error {
	// MySQL commits DDL implicitly, so the transaction only guards the
	// bookkeeping row there.
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range step.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		step.Version, step.Name, time.Now().UnixMilli(),
	); err != nil {
		return err
	}
	return tx.Commit()
}
