// Package reporter renders check results for the terminal or for tools.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
	"github.com/yaklabco/ritobin-lsp/pkg/runner"
)

var _ Reporter = (*reporterFacade)(nil)

// Reporter formats and writes check results.
type Reporter interface {
	// Report aggregates result, writes it and returns the aggregate so that
	// callers can derive an exit status.
	Report(ctx context.Context, result *runner.Result) (*analysis.Report, error)
}

// reporterFacade bridges the Reporter interface to Renderer implementations.
type reporterFacade struct {
	renderer     Renderer
	analysisOpts analysis.Options
}

func (f *reporterFacade) Report(ctx context.Context, result *runner.Result) (*analysis.Report, error) {
	var files []analysis.FileResult
	if result != nil {
		files = result.Files
	}
	report := analysis.Analyze(files, f.analysisOpts)
	if err := f.renderer.Render(ctx, report); err != nil {
		return report, fmt.Errorf("render: %w", err)
	}
	return report, nil
}

func newRendererFacade(renderer Renderer, opts Options, sortBy analysis.SortField) *reporterFacade {
	return &reporterFacade{
		renderer: renderer,
		analysisOpts: analysis.Options{
			IncludeDiagnostics: true,
			IncludeByFile:      true,
			SortBy:             sortBy,
			SortDesc:           true,
			WorkingDir:         opts.WorkingDir,
		},
	}
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatText:
		return newRendererFacade(NewTextRenderer(opts), opts, analysis.SortByAlpha), nil
	case FormatJSON:
		return newRendererFacade(NewJSONRenderer(opts), opts, analysis.SortByAlpha), nil
	case FormatSummary:
		return newRendererFacade(NewSummaryRenderer(opts), opts, analysis.SortBySeverity), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
