package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"mcptest/internal/config"
	"mcptest/internal/domain"
)

// JSONStorage keeps every report in one JSON array file under the configured
// output path.
type JSONStorage struct {
	cfg *config.Config
	mu  sync.Mutex
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// Save appends report to the file.
func (s *JSONStorage) Save(ctx context.Context, report domain.TestReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return err
	}
	reports = append(reports, report)

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}

	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	// Write then rename so a reader never sees a half-written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	return nil
}

// List returns report summaries, newest first.
func (s *JSONStorage) List(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	reports, err := s.sorted()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	summaries := make([]domain.ReportSummary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, r.Summary())
	}
	return summaries, nil
}

// Get returns the report with the given id.
func (s *JSONStorage) Get(ctx context.Context, id string) (*domain.TestReport, error) {
	s.mu.Lock()
	reports, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].ID == id {
			return &reports[i], nil
		}
	}
	return nil, ErrNotFound
}

// Last returns the most recent report.
func (s *JSONStorage) Last(ctx context.Context) (*domain.TestReport, error) {
	reports, err := s.sorted()
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNotFound
	}
	return &reports[0], nil
}

// Close is a no-op; the file is opened per call.
func (s *JSONStorage) Close() error {
	return nil
}

func (s *JSONStorage) sorted() ([]domain.TestReport, error) {
	s.mu.Lock()
	reports, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	// Saved order breaks timestamp ties, later saves first.
	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// load reads the file; a missing file is an empty history. Callers hold mu.
func (s *JSONStorage) load() ([]domain.TestReport, error) {
	data, err := os.ReadFile(s.cfg.GetOutputPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reports file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var reports []domain.TestReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("parse reports: %w", err)
	}
	return reports, nil
}
