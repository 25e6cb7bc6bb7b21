package parser

import (
	"fmt"
	"strings"
)

// ParseError reports a document that could not be analyzed at all:
// unreadable content or content that is not text.
type ParseError struct {
	Path   string // Document identity
	Reason string // Human-readable reason
	Err    error  // Underlying error (optional)
}

// NewReadError wraps a failure to read a document's content.
func NewReadError(path string, err error) *ParseError {
	return &ParseError{Path: path, Reason: "cannot read document", Err: err}
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("parse %s: %s", e.Path, e.Reason))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ParseError) Unwrap() error {
	return e.Err
}
