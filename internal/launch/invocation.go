package launch

import (
	"slices"
	"strings"

	"mcptest/internal/domain"
)

const (
	invocationCommand = "npx"
	serverNameSuffix  = "-mcp-server"
)

// parseInvocation reads a flat command line and rebuilds a canonical argument
// vector for it, so extra tokens in the input never reach the process.
func (p *Parser) parseInvocation(input string) (domain.LaunchDescriptor, error) {
	tokens := strings.Fields(input)

	if !slices.ContainsFunc(tokens, p.isCLIPackage) {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrUnrecognizedFormat, "command must use "+p.cliPackage)
	}

	serverIndex := slices.IndexFunc(tokens, p.isServerPackage)
	keyIndex := slices.Index(tokens, domain.KeyFlag)
	clientIndex := slices.Index(tokens, domain.ClientFlag)

	if serverIndex < 0 || keyIndex < 0 || keyIndex+1 >= len(tokens) {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrMissingPackageOrKey, "")
	}

	serverPackage := tokens[serverIndex]
	apiKey := tokens[keyIndex+1]
	var client string
	if clientIndex >= 0 && clientIndex+1 < len(tokens) {
		client = tokens[clientIndex+1]
	}

	args := []string{
		"-y",
		p.cliPackage + "@latest",
		"run",
		serverPackage,
		domain.KeyFlag,
		apiKey,
	}
	if client != "" {
		args = append(args, domain.ClientFlag, client)
	}

	return domain.LaunchDescriptor{
		Kind:          domain.KindInvocation,
		Command:       invocationCommand,
		Args:          args,
		ServerName:    ServerNameFromPackage(serverPackage),
		ServerPackage: serverPackage,
		APIKey:        apiKey,
		Client:        client,
	}, nil
}

// ServerNameFromPackage returns the last path segment of pkg without the
// -mcp-server suffix: "@acme/demo-mcp-server" becomes "demo".
func ServerNameFromPackage(pkg string) string {
	name := pkg
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		name = pkg[i+1:]
	}
	return strings.TrimSuffix(name, serverNameSuffix)
}
