package cli

import (
	"errors"

	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
)

// Exit codes for ritobin-lsp.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitCheckErrors indicates a check completed but found errors.
	ExitCheckErrors = 1

	// ExitCheckWarnings indicates a check found warnings (when strict mode).
	ExitCheckWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates files that could not be read.
	ExitIOError = 74
)

// Sentinel errors that carry a check outcome to the exit status.
var (
	ErrIssuesFound     = errors.New("check issues found")
	ErrWarningsFound   = errors.New("check warnings found")
	ErrUnreadableFiles = errors.New("some files could not be read")
)

// ExitCodeFromReport determines the exit code of a check. Errors outrank
// unreadable files, which outrank warnings in strict mode.
func ExitCodeFromReport(report *analysis.Report, strict bool) int {
	if report == nil {
		return ExitSuccess
	}

	switch {
	case report.Totals.HasErrors():
		return ExitCheckErrors
	case report.Totals.FilesFailed > 0:
		return ExitIOError
	case strict && report.Totals.Warnings > 0:
		return ExitCheckWarnings
	default:
		return ExitSuccess
	}
}

// errorForExitCode returns the sentinel error reporting code, or nil.
func errorForExitCode(code int) error {
	switch code {
	case ExitCheckErrors:
		return ErrIssuesFound
	case ExitCheckWarnings:
		return ErrWarningsFound
	case ExitIOError:
		return ErrUnreadableFiles
	default:
		return nil
	}
}

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrIssuesFound):
		return ExitCheckErrors
	case errors.Is(err, ErrWarningsFound):
		return ExitCheckWarnings
	case errors.Is(err, ErrUnreadableFiles):
		return ExitIOError
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	default:
		return ExitCheckErrors
	}
}

// IsOutcome reports whether err only signals a check outcome that has
// already been printed.
func IsOutcome(err error) bool {
	return errors.Is(err, ErrIssuesFound) ||
		errors.Is(err, ErrWarningsFound) ||
		errors.Is(err, ErrUnreadableFiles)
}
