package domain

import "time"

// Outcome is the stage at which a test run was decided
type Outcome string

const (
	OutcomePassed             Outcome = "passed"
	OutcomeFailed             Outcome = "failed"
	OutcomeConfigurationError Outcome = "configuration_error"
	OutcomeLaunchError        Outcome = "launch_error"
)

// ServerDetails is the launch command as it was executed, with the key masked
type ServerDetails struct {
	Command string   `json:"command" yaml:"command"`
	Args    []string `json:"args" yaml:"args"`
	Client  string   `json:"client,omitempty" yaml:"client,omitempty"`
}

// TestReport is the final result of testing one configuration
type TestReport struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`

	Success bool    `json:"success" yaml:"success"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Error   string  `json:"error,omitempty" yaml:"error,omitempty"`

	ConfigurationType Kind           `json:"configurationType,omitempty" yaml:"configurationType,omitempty"`
	ServerName        string         `json:"serverName,omitempty" yaml:"serverName,omitempty"`
	ServerPackage     string         `json:"serverPackage,omitempty" yaml:"serverPackage,omitempty"`
	ServerDetails     *ServerDetails `json:"serverDetails,omitempty" yaml:"serverDetails,omitempty"`

	ConnectionStatus      bool   `json:"connectionStatus" yaml:"connectionStatus"`
	LastConnectionMessage string `json:"lastConnectionMessage,omitempty" yaml:"lastConnectionMessage,omitempty"`

	Output     []CapturedChunk `json:"output,omitempty" yaml:"output,omitempty"`
	TimedOut   bool            `json:"timedOut,omitempty" yaml:"timedOut,omitempty"`
	ExitCode   int             `json:"exitCode" yaml:"exitCode"`
	DurationMs int64           `json:"durationMs" yaml:"durationMs"`
}

// Provisional reports whether a successful run never confirmed a connection.
// Such runs count as success only because no error pattern matched.
func (r TestReport) Provisional() bool {
	return r.Success && !r.ConnectionStatus
}

// ReportSummary is the row shown in history listings
type ReportSummary struct {
	ID               string    `json:"id" yaml:"id"`
	CreatedAt        time.Time `json:"createdAt" yaml:"createdAt"`
	Source           string    `json:"source" yaml:"source"`
	Success          bool      `json:"success" yaml:"success"`
	Outcome          Outcome   `json:"outcome" yaml:"outcome"`
	ServerName       string    `json:"serverName" yaml:"serverName"`
	ServerPackage    string    `json:"serverPackage" yaml:"serverPackage"`
	ConnectionStatus bool      `json:"connectionStatus" yaml:"connectionStatus"`
	Error            string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary extracts the history row for a report
func (r TestReport) Summary() ReportSummary {
	return ReportSummary{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt,
		Source:           r.Source,
		Success:          r.Success,
		Outcome:          r.Outcome,
		ServerName:       r.ServerName,
		ServerPackage:    r.ServerPackage,
		ConnectionStatus: r.ConnectionStatus,
		Error:            r.Error,
	}
}
