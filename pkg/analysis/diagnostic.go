// Package analysis runs the semantic passes over a parsed ritobin document:
// type checking, point queries and diagnostic assembly.
package analysis

import "github.com/yaklabco/ritobin-lsp/pkg/syntax"

// MaxDiagnostics is the default cap on diagnostics published per document.
const MaxDiagnostics = 20

// DiagnosticSource is the source label attached to every diagnostic.
const DiagnosticSource = "ritobin-lsp"

// Severity mirrors the protocol's diagnostic severities.
type Severity int

// Severity values, numbered as on the wire.
const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Origin records which pass produced a diagnostic.
type Origin uint8

const (
	// OriginTypeCheck marks findings of the type checker.
	OriginTypeCheck Origin = iota
	// OriginParse marks errors reported by the parser.
	OriginParse
)

// String returns "typecheck" or "parse".
func (o Origin) String() string {
	if o == OriginParse {
		return "parse"
	}
	return "typecheck"
}

// Diagnostic is a positioned finding. Span is a byte range in the document.
type Diagnostic struct {
	Span     syntax.Span
	Severity Severity
	Message  string
	Origin   Origin
}

// ParseDiagnostic renders a parser error as a diagnostic.
func ParseDiagnostic(err syntax.Error) Diagnostic {
	return Diagnostic{
		Span:     err.Span,
		Severity: SeverityError,
		Message:  err.Message(),
		Origin:   OriginParse,
	}
}

// Diagnostics type checks tree and merges the result with the parser errors.
// Type checker findings come first. The list is truncated to limit entries;
// a non-positive limit selects MaxDiagnostics.
func Diagnostics(src string, tree *syntax.Tree, parseErrors []syntax.Error, limit int) []Diagnostic {
	if limit <= 0 {
		limit = MaxDiagnostics
	}

	diags := TypeCheck(src, tree)
	if len(diags) >= limit {
		return diags[:limit]
	}
	for _, err := range parseErrors {
		if len(diags) == limit {
			break
		}
		diags = append(diags, ParseDiagnostic(err))
	}
	return diags
}
