package discovery

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"mcptest/internal/domain"
	"mcptest/internal/launch"
)

// ServerEntry is one mcpServers entry of a manifest file
type ServerEntry struct {
	Name          string   `json:"name" yaml:"name"`
	Command       string   `json:"command" yaml:"command"`
	Args          []string `json:"args" yaml:"args"`
	ServerPackage string   `json:"serverPackage,omitempty" yaml:"serverPackage,omitempty"`
	HasKey        bool     `json:"hasKey" yaml:"hasKey"`
}

// Parser inspects configuration files without launching anything
type Parser struct {
	launch *launch.Parser
}

// NewParser creates a new Parser
func NewParser(lp *launch.Parser) *Parser {
	return &Parser{launch: lp}
}

// Detect reports which dialect a file is written in. ok is false for files
// that are neither a manifest nor an invocation.
func (p *Parser) Detect(filePath string) (kind domain.Kind, ok bool, err error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", false, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	text := strings.TrimSpace(string(content))
	if strings.HasPrefix(text, "{") {
		if gjson.Valid(text) && gjson.Get(text, "mcpServers").IsObject() {
			return domain.KindManifest, true, nil
		}
		return "", false, nil
	}
	if strings.Contains(text, p.launch.CLIPackage()) {
		return domain.KindInvocation, true, nil
	}
	return "", false, nil
}

// Configurations keeps the files Detect recognizes, in order
func (p *Parser) Configurations(files []string) ([]string, error) {
	var configs []string
	for _, file := range files {
		_, ok, err := p.Detect(file)
		if err != nil {
			return nil, err
		}
		if ok {
			configs = append(configs, file)
		}
	}
	return configs, nil
}

// FindServers lists every mcpServers entry of a manifest file in document
// order. Only the first one is ever launched by a test.
func (p *Parser) FindServers(filePath string) ([]ServerEntry, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("%s: %w", filePath, domain.ErrMalformedSyntax)
	}

	servers := gjson.GetBytes(content, "mcpServers")
	if !servers.IsObject() {
		return nil, fmt.Errorf("%s: %w", filePath, domain.ErrMissingServers)
	}

	var entries []ServerEntry
	servers.ForEach(func(key, value gjson.Result) bool {
		entry := ServerEntry{
			Name:    key.String(),
			Command: value.Get("command").String(),
		}
		for _, arg := range value.Get("args").Array() {
			entry.Args = append(entry.Args, arg.String())
			if arg.String() == domain.KeyFlag {
				entry.HasKey = true
			}
		}
		entry.ServerPackage = p.launch.ServerPackage(entry.Args)
		entries = append(entries, entry)
		return true
	})
	return entries, nil
}
