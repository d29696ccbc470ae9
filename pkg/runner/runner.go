package runner

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
)

// Result is the outcome of a Run.
type Result struct {
	// Files holds one entry per discovered file, in path order.
	Files []analysis.FileResult

	// Skipped counts walked files that were not ritobin text.
	Skipped int
}

// Run discovers files under opts.Paths and checks them concurrently.
// At most opts.Jobs files are read and analysed at once. Files that cannot
// be read are reported through FileResult.Err rather than failing the run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	ctx, logger := logging.WithFields(ctx, logging.FieldPaths, opts.Paths)
	start := time.Now()

	discovery, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files:   make([]analysis.FileResult, len(discovery.Files)),
		Skipped: discovery.Skipped,
	}
	if len(discovery.Files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(discovery.Files))

	logger.Debug("checking files",
		logging.FieldFiles, len(discovery.Files),
		logging.FieldWorkers, jobs,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for idx, filePath := range discovery.Files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result.Files[idx] = CheckFile(filePath, opts.MaxDiagnostics)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	logger.Debug("check finished",
		logging.FieldFiles, len(result.Files),
		logging.FieldDuration, time.Since(start),
	)

	return result, nil
}

// CheckFile reads and analyses a single file.
func CheckFile(filePath string, maxDiagnostics int) analysis.FileResult {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return analysis.FileResult{Path: filePath, Err: fmt.Errorf("read file: %w", err)}
	}
	if !utf8.Valid(content) {
		return analysis.FileResult{Path: filePath, Err: fmt.Errorf("read file: %s is not valid UTF-8", filePath)}
	}
	return analysis.CheckSource(filePath, string(content), maxDiagnostics)
}
