package analysis_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
)

func TestAnalyze_EmptyResult(t *testing.T) {
	t.Parallel()

	report := analysis.Analyze(nil, analysis.DefaultOptions())

	require.NotNil(t, report)
	assert.Equal(t, 0, report.Totals.Issues)
	assert.Empty(t, report.Diagnostics)
	assert.Empty(t, report.ByFile)
	assert.Equal(t, analysis.ReportVersion, report.Version)
}

func TestAnalyze_CountsTotals(t *testing.T) {
	t.Parallel()

	results := []analysis.FileResult{
		analysis.CheckSource("a.py", "a: nope = 1\nb: string = 2\n}", 0),
		analysis.CheckSource("b.py", "c: u8 = 1", 0),
		{Path: "c.py", Err: errors.New("permission denied")},
	}

	report := analysis.Analyze(results, analysis.DefaultOptions())

	assert.Equal(t, 3, report.Totals.Files)
	assert.Equal(t, 1, report.Totals.FilesWithIssues)
	assert.Equal(t, 1, report.Totals.FilesFailed)
	assert.Equal(t, 3, report.Totals.Issues)
	assert.Equal(t, 3, report.Totals.Errors)
	assert.Equal(t, 2, report.Totals.TypeIssues)
	assert.Equal(t, 1, report.Totals.ParseIssues)
	assert.True(t, report.Totals.HasErrors())
}

func TestAnalyze_Positions(t *testing.T) {
	t.Parallel()

	results := []analysis.FileResult{analysis.CheckSource("a.py", "a: u8 = 1\nb: nope = 2", 0)}

	report := analysis.Analyze(results, analysis.DefaultOptions())

	require.Len(t, report.Diagnostics, 1)
	entry := report.Diagnostics[0]
	assert.Equal(t, "a.py", entry.FilePath)
	assert.Equal(t, "typecheck", entry.Origin)
	assert.Equal(t, "error", entry.Severity)
	assert.Equal(t, 2, entry.StartLine)
	assert.Equal(t, 4, entry.StartColumn)
	assert.Equal(t, 2, entry.EndLine)
	assert.Equal(t, 8, entry.EndColumn)
	assert.Equal(t, "b: nope = 2", entry.Context)
}

func TestAnalyze_ByFileSorting(t *testing.T) {
	t.Parallel()

	results := []analysis.FileResult{
		analysis.CheckSource("z.py", "a: nope = 1", 0),
		analysis.CheckSource("a.py", "a: nope = 1\nb: nope = 1", 0),
		analysis.CheckSource("m.py", "ok: u8 = 1", 0),
	}

	tests := []struct {
		name     string
		sortBy   analysis.SortField
		desc     bool
		expected []string
	}{
		{name: "alpha", sortBy: analysis.SortByAlpha, expected: []string{"a.py", "z.py"}},
		{name: "count descending", sortBy: analysis.SortByCount, desc: true, expected: []string{"a.py", "z.py"}},
		{name: "count ascending", sortBy: analysis.SortByCount, expected: []string{"z.py", "a.py"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := analysis.DefaultOptions()
			opts.SortBy = tt.sortBy
			opts.SortDesc = tt.desc

			report := analysis.Analyze(results, opts)

			paths := make([]string, 0, len(report.ByFile))
			for _, fa := range report.ByFile {
				paths = append(paths, fa.Path)
			}
			assert.Equal(t, tt.expected, paths)
		})
	}
}

func TestSortField_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, analysis.SortByCount.IsValid())
	assert.True(t, analysis.SortByAlpha.IsValid())
	assert.True(t, analysis.SortBySeverity.IsValid())
	assert.False(t, analysis.SortField("bogus").IsValid())
}
