package storage

import (
	"context"
	"errors"
	"fmt"

	"mcptest/internal/config"
	"mcptest/internal/domain"
)

// ErrNotFound is returned when no stored report matches
var ErrNotFound = errors.New("report not found")

// Storage persists test reports for the history, view and HTTP surfaces.
// Implementations are safe for concurrent use.
type Storage interface {
	Save(ctx context.Context, report domain.TestReport) error
	// List returns summaries newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.ReportSummary, error)
	Get(ctx context.Context, id string) (*domain.TestReport, error)
	Last(ctx context.Context) (*domain.TestReport, error)
	Close() error
}

// New opens the backend selected by cfg.Store
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Store {
	case config.StoreJSON, "":
		return NewJSONStorage(cfg), nil
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.StoreMySQL:
		return OpenMySQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
