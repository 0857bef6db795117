package cli

import (
	"time"

	"mcptest/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	EnvFile    string
	Processors int
	Timeout    time.Duration
	Dir        string
	Files      []string
	NameFilter string
	Format     string
	FailFast   bool
	NoSave     bool
	View       bool
	Last       bool
	Servers    bool
	Limit      int
	Port       int
	LogLevel   string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors: f.Processors,
		Timeout:    f.Timeout,
		Dir:        f.Dir,
		Files:      f.Files,
		NameFilter: f.NameFilter,
		Format:     f.Format,
		FailFast:   f.FailFast,
		NoSave:     f.NoSave,
		View:       f.View,
		Last:       f.Last,
		Servers:    f.Servers,
		Limit:      f.Limit,
		Port:       f.Port,
		LogLevel:   f.LogLevel,
	}
}
