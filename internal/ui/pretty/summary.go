package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats report totals as a single line.
// Example: "12 issues (8 errors, 4 warnings) in 3 files".
func (s *Styles) FormatSummaryOneLine(totals analysis.Totals) string {
	checked := totals.Files - totals.FilesFailed
	if totals.Issues == 0 {
		msg := s.Success.Render("No issues found") + s.Dim.Render(fmt.Sprintf(" (%d %s checked)", checked, plural(checked, wordFile, wordFiles)))
		if totals.FilesFailed > 0 {
			msg += ", " + s.Failure.Render(fmt.Sprintf("%d unreadable", totals.FilesFailed))
		}
		return msg + "\n"
	}

	var severityParts []string
	if totals.Errors > 0 {
		severityParts = append(severityParts, s.Error.Render(fmt.Sprintf("%d %s", totals.Errors, plural(totals.Errors, "error", "errors"))))
	}
	if totals.Warnings > 0 {
		severityParts = append(severityParts, s.Warning.Render(fmt.Sprintf("%d %s", totals.Warnings, plural(totals.Warnings, "warning", "warnings"))))
	}
	if totals.Infos > 0 {
		severityParts = append(severityParts, s.Info.Render(fmt.Sprintf("%d info", totals.Infos)))
	}

	issues := fmt.Sprintf("%d %s", totals.Issues, plural(totals.Issues, "issue", "issues"))
	if len(severityParts) > 0 {
		issues += " (" + strings.Join(severityParts, ", ") + ")"
	}

	parts := []string{
		issues,
		fmt.Sprintf("in %d %s", totals.FilesWithIssues, plural(totals.FilesWithIssues, wordFile, wordFiles)),
	}
	if totals.FilesFailed > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d unreadable", totals.FilesFailed)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats report totals as a summary block.
func (s *Styles) FormatSummary(totals analysis.Totals) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files checked:     " +
		s.SummaryValue.Render(strconv.Itoa(totals.Files)) + "\n")

	if totals.FilesWithIssues > 0 {
		builder.WriteString("  Files with issues: " +
			s.Failure.Render(strconv.Itoa(totals.FilesWithIssues)) + "\n")
	}

	if totals.FilesFailed > 0 {
		builder.WriteString("  Files unreadable:  " +
			s.Failure.Render(strconv.Itoa(totals.FilesFailed)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Total issues:      " +
		s.SummaryValue.Render(strconv.Itoa(totals.Issues)) + "\n")

	if totals.TypeIssues > 0 {
		builder.WriteString("    Type errors:     " +
			s.Error.Render(strconv.Itoa(totals.TypeIssues)) + "\n")
	}
	if totals.ParseIssues > 0 {
		builder.WriteString("    Parse errors:    " +
			s.Error.Render(strconv.Itoa(totals.ParseIssues)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case totals.Errors > 0:
		builder.WriteString(s.Failure.Render("Check failed with errors"))
	case totals.Warnings > 0:
		builder.WriteString(s.Warning.Render("Check completed with warnings"))
	default:
		builder.WriteString(s.Success.Render("Check passed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
