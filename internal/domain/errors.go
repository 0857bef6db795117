package domain

import "errors"

// Reasons a configuration is rejected. ConfigurationError wraps exactly one.
var (
	ErrEmptyConfiguration       = errors.New("empty configuration")
	ErrUnrecognizedFormat       = errors.New("unrecognized format")
	ErrMalformedSyntax          = errors.New("malformed syntax")
	ErrMissingServers           = errors.New("missing servers mapping")
	ErrMissingCommandOrArgs     = errors.New("missing command or args")
	ErrMissingRequiredArguments = errors.New("missing required arguments")
	ErrMissingPackageOrKey      = errors.New("missing server package or key")
)

// ConfigurationError reports input that matches neither dialect or fails a
// required-field check
type ConfigurationError struct {
	Reason error
	Detail string
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error: " + e.Reason.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Reason
}

// NewConfigurationError builds a ConfigurationError for reason
func NewConfigurationError(reason error, detail string) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Detail: detail}
}

// LaunchError reports that the operating system could not start the process.
// Its message is the raw system error.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
