package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yaklabco/ritobin-lsp/internal/ui/pretty"
	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
)

// Table layout for the per-file summary.
const (
	tableWidth        = 84
	fileColWidth      = 60
	numColWidth       = 7
	warnColWidth      = 9
	maxFilePathLength = 58
)

// padRight pads a string to the given width with spaces on the right.
// This must be called BEFORE applying ANSI styles.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string to the given width with spaces on the left.
// This must be called BEFORE applying ANSI styles.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// SummaryRenderer writes a per-file table followed by aggregate totals.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if len(report.ByFile) > 0 {
		r.renderFileTable(report.ByFile)
	}
	if _, err := fmt.Fprint(r.out, r.styles.FormatSummary(report.Totals)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func (r *SummaryRenderer) renderFileTable(files []analysis.FileAnalysis) {
	separator := r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth))

	fmt.Fprintln(r.out, r.styles.Bold.Render("Files"))
	fmt.Fprintln(r.out, separator)
	fmt.Fprintf(r.out, "%s %s %s %s\n",
		r.styles.TableHeader.Render(padRight("File", fileColWidth)),
		r.styles.TableHeader.Render(padLeft("Issues", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Errors", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Warnings", warnColWidth)),
	)
	fmt.Fprintln(r.out, separator)

	for _, file := range files {
		path := file.Path
		if len(path) > maxFilePathLength {
			path = "…" + path[len(path)-(maxFilePathLength-1):]
		}

		paddedPath := padRight(path, fileColWidth)
		var styledPath string
		switch {
		case file.Failure != "", file.Errors > 0:
			styledPath = r.styles.TableErrorRow.Render(paddedPath)
		case file.Warnings > 0:
			styledPath = r.styles.TableWarnRow.Render(paddedPath)
		default:
			styledPath = paddedPath
		}

		if file.Failure != "" {
			fmt.Fprintf(r.out, "%s %s\n", styledPath, r.styles.Dim.Render(file.Failure))
			continue
		}

		fmt.Fprintf(r.out, "%s %s %s %s\n",
			styledPath,
			padLeft(strconv.Itoa(file.Issues), numColWidth),
			padLeft(strconv.Itoa(file.Errors), numColWidth),
			padLeft(strconv.Itoa(file.Warnings), warnColWidth),
		)
	}
}
