package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
	"github.com/yaklabco/ritobin-lsp/pkg/config"
	"github.com/yaklabco/ritobin-lsp/pkg/reporter"
	"github.com/yaklabco/ritobin-lsp/pkg/runner"
)

type checkFlags struct {
	format          string
	jobs            int
	maxDiagnostics  int
	exclude         []string
	extensions      []string
	includeVendored bool
	followSymlinks  bool
	noContext       bool
	compact         bool
	strict          bool
}

func newCheckCommand(flags *globalFlags) *cobra.Command {
	opts := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check ritobin text files for errors",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json, summary")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 0, "number of files checked in parallel (0 = auto)")
	cmd.Flags().IntVar(&opts.maxDiagnostics, "max-diagnostics", 0, "maximum diagnostics reported per file")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "glob patterns to skip")
	cmd.Flags().StringSliceVar(&opts.extensions, "ext", nil, "file extensions to walk (default .py)")
	cmd.Flags().BoolVar(&opts.includeVendored, "include-vendored", false, "also walk vendored directories")
	cmd.Flags().BoolVar(&opts.followSymlinks, "follow-symlinks", false, "walk symlinked directories")
	cmd.Flags().BoolVar(&opts.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "do not indent JSON output")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as errors for the exit code")

	return cmd
}

const checkLongDescription = `Check ritobin text files with the same analysis the language server
runs: parse errors and type errors are reported per file.

Directories are walked for .py files that start with a ritobin header
(#PROP_text or #PTCH_text). Files named explicitly are always checked.
Hidden, vendored and binary files are skipped.

Examples:
  ritobin-lsp check                      # Check the current directory
  ritobin-lsp check data/characters/     # Check one directory
  ritobin-lsp check skin0.py             # Check a single file
  ritobin-lsp check --format json        # Output as JSON for CI
  ritobin-lsp check --format summary     # Per-file table and totals`

func runCheck(cmd *cobra.Command, args []string, flags *globalFlags, opts *checkFlags) error {
	format, err := reporter.ParseFormat(opts.format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	set, err := loadSettings(cmd, flags, &config.Config{
		Format:         config.OutputFormat(format),
		Jobs:           opts.jobs,
		MaxDiagnostics: opts.maxDiagnostics,
	})
	if err != nil {
		return err
	}
	defer func() { _ = set.Close() }()

	cfg := set.Config
	logger := set.Logger
	ctx := logging.WithLogger(cmd.Context(), logger)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	runOpts := runner.Options{
		Paths:           args,
		WorkingDir:      workDir,
		Extensions:      opts.extensions,
		ExcludeGlobs:    opts.exclude,
		IncludeVendored: opts.includeVendored,
		FollowSymlinks:  opts.followSymlinks,
		Jobs:            cfg.Jobs,
		MaxDiagnostics:  cfg.MaxDiagnostics,
	}

	logger.Debug("starting check",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkers, runOpts.Jobs,
	)

	result, err := runner.Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	if result.Skipped > 0 {
		logger.Info("skipped files that are not ritobin text", logging.FieldFiles, result.Skipped)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      reporter.Format(cfg.Format),
		Color:       flags.color,
		ShowContext: !opts.noContext,
		ShowSummary: true,
		Compact:     opts.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	report, err := rep.Report(ctx, result)
	if err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	return errorForExitCode(ExitCodeFromReport(report, opts.strict))
}
