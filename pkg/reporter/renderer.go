package reporter

import (
	"context"

	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
)

// Renderer writes an aggregated check report. Implementations hold only
// presentation settings; aggregation and sorting happen before Render.
type Renderer interface {
	Render(ctx context.Context, report *analysis.Report) error
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(ctx context.Context, report *analysis.Report) error

// Render calls fn.
func (fn RendererFunc) Render(ctx context.Context, report *analysis.Report) error {
	return fn(ctx, report)
}

// NewWithRenderer builds a Reporter around a caller-supplied renderer.
// Files in the report are ordered by error count, highest first, and
// paths are made relative to opts.WorkingDir.
func NewWithRenderer(renderer Renderer, opts Options) Reporter {
	return newRendererFacade(renderer, opts, analysis.SortBySeverity)
}
