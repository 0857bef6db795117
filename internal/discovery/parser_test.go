package discovery

import (
	"errors"
	"path/filepath"
	"testing"

	"mcptest/internal/domain"
	"mcptest/internal/launch"
)

const twoServers = `{
  "mcpServers": {
    "zeta": {
      "command": "npx",
      "args": ["-y", "@smithery/cli@latest", "run", "@acme/zeta-mcp-server", "--key", "K1"]
    },
    "alpha": {
      "command": "node",
      "args": ["server.js"]
    }
  }
}`

func newTestParser() *Parser {
	return NewParser(launch.NewParser("@smithery/cli"))
}

func TestParser_Detect(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"manifest.json":  twoServers,
		"package.json":   `{"name": "app", "version": "1.0.0"}`,
		"broken.json":    `{"mcpServers": `,
		"invocation.txt": "npx -y @smithery/cli@latest run @acme/demo --key K\n",
		"notes.txt":      "nothing to see",
	})

	tests := []struct {
		file   string
		kind   domain.Kind
		wantOK bool
	}{
		{"manifest.json", domain.KindManifest, true},
		{"package.json", "", false},
		{"broken.json", "", false},
		{"invocation.txt", domain.KindInvocation, true},
		{"notes.txt", "", false},
	}

	parser := newTestParser()
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			kind, ok, err := parser.Detect(filepath.Join(tmpDir, tt.file))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK || kind != tt.kind {
				t.Errorf("got (%q, %v), want (%q, %v)", kind, ok, tt.kind, tt.wantOK)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := parser.Detect(filepath.Join(tmpDir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestParser_Configurations(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"a.json": twoServers,
		"b.json": `{}`,
		"c.txt":  "npx @smithery/cli run @acme/x --key k",
	})

	files := []string{
		filepath.Join(tmpDir, "a.json"),
		filepath.Join(tmpDir, "b.json"),
		filepath.Join(tmpDir, "c.txt"),
	}
	configs, err := newTestParser().Configurations(files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) != 2 || configs[0] != files[0] || configs[1] != files[2] {
		t.Errorf("unexpected configurations: %v", configs)
	}
}

func TestParser_FindServers(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"manifest.json": twoServers,
		"broken.json":   `{"mcpServers": `,
		"empty.json":    `{"servers": {}}`,
	})
	parser := newTestParser()

	t.Run("lists entries in document order", func(t *testing.T) {
		entries, err := parser.FindServers(filepath.Join(tmpDir, "manifest.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}

		first := entries[0]
		if first.Name != "zeta" {
			t.Errorf("expected zeta first, got %s", first.Name)
		}
		if first.ServerPackage != "@acme/zeta-mcp-server" {
			t.Errorf("unexpected package %q", first.ServerPackage)
		}
		if !first.HasKey {
			t.Error("expected zeta to carry a key")
		}
		if len(first.Args) != 6 {
			t.Errorf("expected 6 args, got %d", len(first.Args))
		}

		second := entries[1]
		if second.Name != "alpha" || second.Command != "node" || second.HasKey || second.ServerPackage != "" {
			t.Errorf("unexpected second entry: %+v", second)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parser.FindServers(filepath.Join(tmpDir, "broken.json"))
		if !errors.Is(err, domain.ErrMalformedSyntax) {
			t.Errorf("expected ErrMalformedSyntax, got %v", err)
		}
	})

	t.Run("missing mapping", func(t *testing.T) {
		_, err := parser.FindServers(filepath.Join(tmpDir, "empty.json"))
		if !errors.Is(err, domain.ErrMissingServers) {
			t.Errorf("expected ErrMissingServers, got %v", err)
		}
	})
}
