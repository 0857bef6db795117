package launch

import (
	"slices"

	"github.com/tidwall/gjson"

	"mcptest/internal/domain"
)

const serversKey = "mcpServers"

// parseManifest reads the first mcpServers entry. gjson walks objects in
// document order, which is what "first" means here.
func (p *Parser) parseManifest(input string) (domain.LaunchDescriptor, error) {
	if !gjson.Valid(input) {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrMalformedSyntax, "invalid JSON")
	}

	servers := gjson.Get(input, serversKey)
	if !servers.Exists() || !servers.IsObject() {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrMissingServers, "")
	}

	var name string
	var entry gjson.Result
	servers.ForEach(func(key, value gjson.Result) bool {
		name = key.String()
		entry = value
		return false
	})
	if !entry.Exists() {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrMissingServers, "mcpServers is empty")
	}

	command := entry.Get("command")
	argsValue := entry.Get("args")
	if command.Type != gjson.String || command.String() == "" || !argsValue.IsArray() {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrMissingCommandOrArgs, "server "+name)
	}

	var args []string
	for _, a := range argsValue.Array() {
		if a.Type != gjson.String {
			return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrMissingCommandOrArgs, "args must be strings")
		}
		args = append(args, a.String())
	}

	hasCLI := slices.ContainsFunc(args, p.isCLIPackage)
	keyIndex := slices.Index(args, domain.KeyFlag)
	serverIndex := slices.IndexFunc(args, p.isServerPackage)

	if !hasCLI || keyIndex < 0 || serverIndex < 0 {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrMissingRequiredArguments, missingDetail(hasCLI, keyIndex >= 0, serverIndex >= 0))
	}
	if keyIndex+1 >= len(args) {
		return domain.LaunchDescriptor{}, domain.NewConfigurationError(domain.ErrMissingRequiredArguments, "no value after --key")
	}

	desc := domain.LaunchDescriptor{
		Kind:          domain.KindManifest,
		Command:       command.String(),
		Args:          args,
		ServerName:    name,
		ServerPackage: args[serverIndex],
		APIKey:        args[keyIndex+1],
	}
	if i := slices.Index(args, domain.ClientFlag); i >= 0 && i+1 < len(args) {
		desc.Client = args[i+1]
	}
	return desc, nil
}

func missingDetail(hasCLI, hasKey, hasServer bool) string {
	switch {
	case !hasCLI:
		return "no CLI runner argument"
	case !hasKey:
		return "no --key argument"
	case !hasServer:
		return "no server package argument"
	}
	return ""
}
