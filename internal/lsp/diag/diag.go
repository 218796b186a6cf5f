// Package diag declares the diagnostic vocabulary shared by every analysis
// layer (spec.md §7 "Error Handling Design"): parse errors, the recoverable
// conditions analysis can encounter (missing files, I/O failures, missing
// workspace root, import cycles, recursion limits), and the severities a
// client might want to filter on.
package diag

import "github.com/shometownstd7300-pixel/gn-language-server/gn/token"

// Severity classifies how serious a diagnostic is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "error"
	}
}

// Code identifies the kind of condition a [Diagnostic] reports. Every value
// here corresponds to a named condition in spec.md §7.
type Code string

const (
	CodeParseError            Code = "ParseError"
	CodeImportResolutionError Code = "ImportResolutionError"
	CodeIoError               Code = "IoError"
	CodeWorkspaceNotFound     Code = "WorkspaceNotFound"
	CodeCycleDetected         Code = "CycleDetected"
	CodeDepthExceeded         Code = "DepthExceeded"
)

// Diagnostic is one reportable condition, with enough position information
// to let an editor underline it.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Span     token.Span
}

// New builds an error-severity diagnostic.
func New(code Code, span token.Span, message string) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityError, Message: message, Span: span}
}

// Warning builds a warning-severity diagnostic.
func Warning(code Code, span token.Span, message string) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityWarning, Message: message, Span: span}
}
