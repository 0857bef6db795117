// Package launch turns a server launcher configuration into a LaunchDescriptor.
//
// Two dialects are recognized. A manifest is a JSON document whose first
// mcpServers entry names the command and its args. An invocation is a flat
// command line such as
//
//	npx -y @smithery/cli@latest install @acme/demo-mcp-server --client claude --key ABC123
//
// Both must route through the CLI-runner package, name a scoped server package
// and carry an API key after --key.
package launch

import (
	"strings"

	"mcptest/internal/domain"
)

// Parser parses configurations that go through cliPackage
type Parser struct {
	cliPackage string
}

// NewParser creates a Parser for the given CLI-runner package identifier
func NewParser(cliPackage string) *Parser {
	return &Parser{cliPackage: cliPackage}
}

// CLIPackage returns the CLI-runner package identifier the parser requires
func (p *Parser) CLIPackage() string {
	return p.cliPackage
}

// Parse detects the dialect of input and normalizes it.
// Every failure is a *domain.ConfigurationError.
func (p *Parser) Parse(input string) (domain.LaunchDescriptor, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrEmptyConfiguration, "")
	}

	if strings.HasPrefix(trimmed, "{") {
		return p.parseManifest(trimmed)
	}
	if strings.Contains(trimmed, p.cliPackage) {
		return p.parseInvocation(trimmed)
	}
	return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrUnrecognizedFormat,
		"expected a JSON manifest or a command using "+p.cliPackage)
}

// ServerPackage returns the first server package in args, or ""
func (p *Parser) ServerPackage(args []string) string {
	for _, arg := range args {
		if p.isServerPackage(arg) {
			return arg
		}
	}
	return ""
}

// isCLIPackage reports whether arg references the CLI-runner package
func (p *Parser) isCLIPackage(arg string) bool {
	return strings.Contains(arg, p.cliPackage)
}

// isServerPackage reports whether arg is an @-scoped package other than the CLI runner
func (p *Parser) isServerPackage(arg string) bool {
	if p.isCLIPackage(arg) {
		return false
	}
	at := strings.Index(arg, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(arg[at:], "/")
}
