package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
)

// FormatDiagnostic formats a single diagnostic for terminal output.
func (s *Styles) FormatDiagnostic(diag *analysis.DiagnosticEntry, showContext bool) string {
	var builder strings.Builder

	// Location: path:line:col
	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(diag.FilePath),
		diag.StartLine,
		diag.StartColumn,
	)

	// Main line: location  severity  message  (origin)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
		s.Origin.Render("("+diag.Origin+")"),
	))

	if showContext && diag.Context != "" {
		builder.WriteString(s.FormatSourceContext(diag.Context, diag.StartColumn))
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(severity string) string {
	switch severity {
	case analysis.SeverityError.String():
		return s.Error.Render(severity)
	case analysis.SeverityWarning.String():
		return s.Warning.Render(severity)
	case analysis.SeverityInformation.String(), analysis.SeverityHint.String():
		return s.Info.Render(severity)
	default:
		return severity
	}
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	// Indent to align with diagnostic output
	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}

// FormatFailure formats a file that could not be checked.
func (s *Styles) FormatFailure(path, reason string) string {
	return fmt.Sprintf("%s: %s\n", s.FilePath.Render(path), s.Error.Render("error: "+reason))
}
