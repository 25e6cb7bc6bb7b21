package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid or unrecognized threshold
// configuration. It is fatal: no document is analyzed once it is returned.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid configuration")
	if e.Field != "" {
		fmt.Fprintf(&sb, ": %s", e.Field)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying error
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func fieldError(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
