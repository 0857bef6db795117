package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for file, content := range files {
		fullPath := filepath.Join(root, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	writeFiles(t, tmpDir, map[string]string{
		"configs/weather.json":        "{}",
		"configs/search/github.json":  "{}",
		"configs/notes/invoke.txt":    "npx",
		"configs/readme.md":           "# docs",
		"node_modules/pkg/index.json": "{}",
		".git/config.json":            "{}",
		"UPPER.JSON":                  "{}",
	})

	scanner := NewScanner([]string{"node_modules"})

	t.Run("scans candidate files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// json and txt files outside skipped and hidden directories
		if len(results) != 4 {
			t.Errorf("expected 4 files, got %d: %v", len(results), results)
		}
	})

	t.Run("scans from a hidden root", func(t *testing.T) {
		hidden := filepath.Join(tmpDir, ".git")
		results, err := scanner.Scan(hidden)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 file, got %d", len(results))
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "configs/weather.json"))
		if err == nil {
			t.Error("expected error for file path")
		}
	})
}
