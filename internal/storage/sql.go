package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"mcptest/internal/config"
	"mcptest/internal/domain"
	"mcptest/internal/migration"
)

// SQLStorage stores reports in the reports table created by the migration
// package. The full report is kept as a JSON payload next to the columns
// used for listing.
type SQLStorage struct {
	db *sql.DB
}

// NewSQLStorage wraps an already migrated database
func NewSQLStorage(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db}
}

// OpenSQLite opens (or creates) the SQLite database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLStorage, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	return migrated(ctx, db)
}

// OpenMySQL creates the configured database if needed, then opens and
// migrates it.
func OpenMySQL(ctx context.Context, cfg *config.Config) (*SQLStorage, error) {
	if _, err := migration.NewDatabaseManager(cfg).EnsureDatabase(ctx); err != nil {
		return nil, err
	}
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	return migrated(ctx, db)
}

// OpenDB opens the SQL database behind cfg.Store without migrating it.
// The MySQL database itself must already exist.
func OpenDB(cfg *config.Config) (*sql.DB, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return openSQLite(cfg.SQLitePath)
	case config.StoreMySQL:
		db, err := sql.Open("mysql", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open mysql: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("store %q is not an SQL store", cfg.Store)
	}
}

func openSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}
	return db, nil
}

func migrated(ctx context.Context, db *sql.DB) (*SQLStorage, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	if _, err := migration.NewSchemaMigrator(db).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewSQLStorage(db), nil
}

// Save inserts report.
func (s *SQLStorage) Save(ctx context.Context, report domain.TestReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var errMsg sql.NullString
	if report.Error != "" {
		errMsg = sql.NullString{String: report.Error, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO reports
		(id, created_at, source, success, outcome, server_name, server_package, connection_status, error_message, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.CreatedAt.UnixMilli(),
		report.Source,
		report.Success,
		string(report.Outcome),
		report.ServerName,
		report.ServerPackage,
		report.ConnectionStatus,
		errMsg,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// List returns summaries newest first.
func (s *SQLStorage) List(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	query := `SELECT id, created_at, source, success, outcome, server_name, server_package, connection_status, error_message
		FROM reports ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ReportSummary
	for rows.Next() {
		var (
			sum       domain.ReportSummary
			createdAt int64
			outcome   string
			errMsg    sql.NullString
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.Source, &sum.Success, &outcome,
			&sum.ServerName, &sum.ServerPackage, &sum.ConnectionStatus, &errMsg); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(createdAt).UTC()
		sum.Outcome = domain.Outcome(outcome)
		sum.Error = errMsg.String
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Get returns the report with the given id.
func (s *SQLStorage) Get(ctx context.Context, id string) (*domain.TestReport, error) {
	return s.one(ctx, "SELECT payload FROM reports WHERE id = ?", id)
}

// Last returns the most recent report.
func (s *SQLStorage) Last(ctx context.Context) (*domain.TestReport, error) {
	return s.one(ctx, "SELECT payload FROM reports ORDER BY created_at DESC, id DESC LIMIT 1")
}

// Close closes the database.
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

func (s *SQLStorage) one(ctx context.Context, query string, args ...any) (*domain.TestReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}

	var report domain.TestReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}
