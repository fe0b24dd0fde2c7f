package expr

import (
	"fmt"
	"strings"
)

// DiagnosticLevel indicates severity.
type DiagnosticLevel int

const (
	DiagError DiagnosticLevel = iota
	DiagWarning
)

// Diagnostic is a compiler message with source location.
type Diagnostic struct {
	Level   DiagnosticLevel
	Span    Span
	Message string
	Code    string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %d:%d: %s", d.Code, d.Span.Start, d.Span.End, d.Message)
}

// Diagnostics is returned as an error by Compile when any diagnostic is an error.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "; ")
}

// HasErrors reports whether any diagnostic is an error.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Level == DiagError {
			return true
		}
	}
	return false
}
