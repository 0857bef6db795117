package domain

import (
	"encoding/json"
	"strings"
)

// Kind names the configuration dialect a descriptor was parsed from
type Kind string

const (
	// KindManifest is the JSON document with a top-level mcpServers mapping
	KindManifest Kind = "manifest"
	// KindInvocation is a flat command line string
	KindInvocation Kind = "invocation"
)

// KeyFlag is the argument that precedes the API key in both dialects
const KeyFlag = "--key"

// ClientFlag is the optional argument that precedes the client name
const ClientFlag = "--client"

// LaunchDescriptor is the normalized result of parsing a configuration
type LaunchDescriptor struct {
	Kind          Kind     `json:"kind" yaml:"kind"`
	Command       string   `json:"command" yaml:"command"`
	Args          []string `json:"args" yaml:"args"`
	ServerName    string   `json:"serverName" yaml:"serverName"`
	ServerPackage string   `json:"serverPackage" yaml:"serverPackage"`
	APIKey        string   `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	Client        string   `json:"client,omitempty" yaml:"client,omitempty"`
}

// Invocation renders the descriptor as a single command line
func (d LaunchDescriptor) Invocation() string {
	parts := make([]string, 0, len(d.Args)+1)
	parts = append(parts, d.Command)
	parts = append(parts, d.Args...)
	return strings.Join(parts, " ")
}

type manifestEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

type manifestDocument struct {
	MCPServers map[string]manifestEntry `json:"mcpServers"`
}

// Manifest renders the descriptor as a one-entry mcpServers document
func (d LaunchDescriptor) Manifest() ([]byte, error) {
	name := d.ServerName
	if name == "" {
		name = "server"
	}
	doc := manifestDocument{
		MCPServers: map[string]manifestEntry{
			name: {Command: d.Command, Args: d.Args},
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Redacted returns a copy whose API key is masked everywhere it appears.
func (d LaunchDescriptor) Redacted() LaunchDescriptor {
	out := d
	out.Args = make([]string, len(d.Args))
	copy(out.Args, d.Args)
	if d.APIKey == "" {
		return out
	}
	masked := MaskSecret(d.APIKey)
	out.APIKey = masked
	for i := range out.Args {
		if out.Args[i] == d.APIKey {
			out.Args[i] = masked
		}
	}
	return out
}

// MaskSecret keeps the first four characters of s and hides the rest
func MaskSecret(s string) string {
	const visible = 4
	runes := []rune(s)
	if len(runes) <= visible {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:visible]) + strings.Repeat("*", len(runes)-visible)
}
