package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/ritobin-lsp/internal/ui/pretty"
	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
)

// TextRenderer writes diagnostics grouped by file as styled terminal output.
type TextRenderer struct {
	opts   Options
	styles *pretty.Styles
}

// NewTextRenderer creates a new text renderer.
func NewTextRenderer(opts Options) *TextRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
	}
}

// Render implements Renderer.
func (r *TextRenderer) Render(_ context.Context, report *analysis.Report) (err error) {
	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if report.Totals.Files == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(bw, r.styles.Success.Render("No files to check."))
		}
		return nil
	}

	for _, file := range report.ByFile {
		if file.Failure != "" {
			fmt.Fprint(bw, r.styles.FormatFailure(file.Path, file.Failure))
		}
	}

	r.writeGrouped(bw, report.Diagnostics)

	if r.opts.ShowSummary {
		fmt.Fprint(bw, r.styles.FormatSummaryOneLine(report.Totals))
	}
	return nil
}

// writeGrouped writes runs of diagnostics sharing a file under one header.
func (r *TextRenderer) writeGrouped(bw *bufio.Writer, diags []analysis.DiagnosticEntry) {
	for start := 0; start < len(diags); {
		end := start + 1
		for end < len(diags) && diags[end].FilePath == diags[start].FilePath {
			end++
		}

		fmt.Fprintln(bw, r.styles.FormatFileHeader(diags[start].FilePath, end-start))
		for idx := start; idx < end; idx++ {
			fmt.Fprint(bw, r.styles.FormatDiagnostic(&diags[idx], r.opts.ShowContext))
		}
		fmt.Fprintln(bw)

		start = end
	}
}
