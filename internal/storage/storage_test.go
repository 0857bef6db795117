package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcptest/internal/config"
	"mcptest/internal/domain"
)

func testReport(id string, at time.Time, success bool) domain.TestReport {
	outcome := domain.OutcomePassed
	errMsg := ""
	if !success {
		outcome = domain.OutcomeFailed
		errMsg = "Server connection failed"
	}
	return domain.TestReport{
		ID:                id,
		CreatedAt:         at,
		Source:            "inline",
		Success:           success,
		Outcome:           outcome,
		Error:             errMsg,
		ConfigurationType: domain.KindInvocation,
		ServerName:        "demo",
		ServerPackage:     "@acme/demo-mcp-server",
		ServerDetails: &domain.ServerDetails{
			Command: "npx",
			Args:    []string{"-y", "@smithery/cli@latest", "run", "@acme/demo-mcp-server", "--key", "ABC1**"},
		},
		ConnectionStatus: success,
		Output: []domain.CapturedChunk{
			{Stream: domain.Stdout, Text: "hello\n"},
			{Stream: domain.Stderr, Text: "warn\n"},
		},
		ExitCode:   0,
		DurationMs: 1200,
	}
}

type backend struct {
	name string
	open func(t *testing.T) Storage
}

func backends() []backend {
	return []backend{
		{
			name: "json",
			open: func(t *testing.T) Storage {
				cfg := config.New()
				cfg.OutputJSONDir = t.TempDir()
				return NewJSONStorage(cfg)
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Storage {
				s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "reports.db"))
				require.NoError(t, err)
				return s
			},
		},
	}
}

func TestStorage_RoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			defer s.Close()

			_, err := s.Last(ctx)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, testReport("a", base, true)))
			require.NoError(t, s.Save(ctx, testReport("b", base.Add(2*time.Minute), false)))
			require.NoError(t, s.Save(ctx, testReport("c", base.Add(time.Minute), true)))

			summaries, err := s.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, summaries, 3)
			assert.Equal(t, []string{"b", "c", "a"}, []string{summaries[0].ID, summaries[1].ID, summaries[2].ID})
			assert.False(t, summaries[0].Success)
			assert.Equal(t, domain.OutcomeFailed, summaries[0].Outcome)
			assert.Equal(t, "Server connection failed", summaries[0].Error)
			assert.True(t, summaries[1].ConnectionStatus)
			assert.True(t, summaries[0].CreatedAt.Equal(base.Add(2*time.Minute)))

			limited, err := s.List(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			got, err := s.Get(ctx, "c")
			require.NoError(t, err)
			want := testReport("c", base.Add(time.Minute), true)
			assert.Equal(t, want.Output, got.Output)
			assert.Equal(t, want.ServerDetails, got.ServerDetails)
			assert.Equal(t, want.ServerPackage, got.ServerPackage)
			assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

			last, err := s.Last(ctx)
			require.NoError(t, err)
			assert.Equal(t, "b", last.ID)

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStorage_ConcurrentSave(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			defer s.Close()

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := string(rune('a' + i))
					assert.NoError(t, s.Save(ctx, testReport(id, base.Add(time.Duration(i)*time.Second), true)))
				}(i)
			}
			wg.Wait()

			summaries, err := s.List(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, summaries, 8)
		})
	}
}

func TestJSONStorage_CorruptFile(t *testing.T) {
	cfg := config.New()
	cfg.OutputJSONDir = t.TempDir()
	require.NoError(t, os.WriteFile(cfg.GetOutputPath(), []byte("{not json"), 0644))

	s := NewJSONStorage(cfg)
	_, err := s.List(context.Background(), 0)
	assert.Error(t, err)
	assert.Error(t, s.Save(context.Background(), testReport("a", time.Now(), true)))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		cfg := config.New()
		cfg.Store = config.StoreJSON
		s, err := New(ctx, cfg)
		require.NoError(t, err)
		assert.IsType(t, &JSONStorage{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.New()
		cfg.Store = config.StoreSQLite
		cfg.SQLitePath = filepath.Join(t.TempDir(), "reports.db")
		s, err := New(ctx, cfg)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &SQLStorage{}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.New()
		cfg.Store = "redis"
		_, err := New(ctx, cfg)
		assert.Error(t, err)
	})
}
