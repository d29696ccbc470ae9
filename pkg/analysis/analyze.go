package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/yaklabco/ritobin-lsp/pkg/lines"
	"github.com/yaklabco/ritobin-lsp/pkg/syntax"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path        string
	Lines       *lines.LineNumbers
	Diagnostics []Diagnostic

	// Source is the checked text, used for diagnostic context.
	Source string

	// Err is set when the file could not be read.
	Err error
}

// CheckSource parses src and collects its diagnostics, capped at limit.
func CheckSource(path, src string, limit int) FileResult {
	tree, parseErrors := syntax.Parse(src)
	return FileResult{
		Path:        path,
		Lines:       lines.New(src),
		Source:      src,
		Diagnostics: Diagnostics(src, tree, parseErrors, limit),
	}
}

// makeRelativePath converts an absolute path to a relative path from workDir.
// If workDir is empty or conversion fails, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil {
		return absPath
	}
	return relPath
}

// incrementSeverityCounts updates counts based on severity.
func incrementSeverityCounts(severity Severity, totals *Totals, fa *FileAnalysis) {
	switch severity {
	case SeverityError:
		totals.Errors++
		fa.Errors++
	case SeverityWarning:
		totals.Warnings++
		fa.Warnings++
	case SeverityInformation, SeverityHint:
		totals.Infos++
		fa.Infos++
	}
}

// createDiagnosticEntry converts a diagnostic to 1-based coordinates.
func createDiagnosticEntry(path string, file FileResult, diag Diagnostic) DiagnosticEntry {
	entry := DiagnosticEntry{
		FilePath: path,
		Origin:   diag.Origin.String(),
		Severity: diag.Severity.String(),
		Message:  diag.Message,
	}
	if ln := file.Lines; ln != nil {
		rng := ln.Range(diag.Span)
		entry.StartLine = int(rng.Start.Line) + 1
		entry.StartColumn = int(rng.Start.Character) + 1
		entry.EndLine = int(rng.End.Line) + 1
		entry.EndColumn = int(rng.End.Character) + 1
		entry.Context = lineText(file.Source, ln, rng.Start.Line)
	}
	return entry
}

// lineText returns the text of line without its terminator.
func lineText(src string, ln *lines.LineNumbers, line uint32) string {
	if src == "" {
		return ""
	}
	start := ln.ByteIndex(line, 0)
	end := ln.ByteIndex(line+1, 0)
	if start >= end || int(end) > len(src) {
		return ""
	}
	return strings.TrimRight(src[start:end], "\r\n")
}

// Analyze aggregates file results into a Report in a single pass.
func Analyze(results []FileResult, opts Options) *Report {
	report := &Report{
		Version:   ReportVersion,
		Timestamp: time.Now(),
	}

	byFile := make([]FileAnalysis, 0, len(results))
	for _, file := range results {
		report.Totals.Files++

		displayPath := makeRelativePath(file.Path, opts.WorkingDir)
		fa := FileAnalysis{Path: displayPath}

		if file.Err != nil {
			report.Totals.FilesFailed++
			fa.Failure = file.Err.Error()
			byFile = append(byFile, fa)
			continue
		}
		if len(file.Diagnostics) > 0 {
			report.Totals.FilesWithIssues++
		}

		for _, diag := range file.Diagnostics {
			report.Totals.Issues++
			fa.Issues++
			incrementSeverityCounts(diag.Severity, &report.Totals, &fa)
			switch diag.Origin {
			case OriginTypeCheck:
				report.Totals.TypeIssues++
			case OriginParse:
				report.Totals.ParseIssues++
			}

			if opts.IncludeDiagnostics {
				report.Diagnostics = append(report.Diagnostics, createDiagnosticEntry(displayPath, file, diag))
			}
		}

		if fa.Issues > 0 {
			byFile = append(byFile, fa)
		}
	}

	if opts.IncludeByFile {
		sortFileAnalysis(byFile, opts.SortBy, opts.SortDesc)
		report.ByFile = byFile
	}

	return report
}

func sortFileAnalysis(files []FileAnalysis, sortBy SortField, desc bool) {
	slices.SortStableFunc(files, func(left, right FileAnalysis) int {
		switch sortBy {
		case SortByAlpha:
			// Alphabetical sorting is always ascending (A-Z)
			return cmp.Compare(left.Path, right.Path)
		case SortBySeverity:
			// Errors first, then warnings, then infos (always descending by severity)
			result := cmp.Compare(right.Errors, left.Errors)
			if result == 0 {
				result = cmp.Compare(right.Warnings, left.Warnings)
			}
			if result == 0 {
				result = cmp.Compare(right.Issues, left.Issues)
			}
			return result
		default: // SortByCount
			result := cmp.Compare(left.Issues, right.Issues)
			if desc {
				result = -result
			}
			return result
		}
	})
}
