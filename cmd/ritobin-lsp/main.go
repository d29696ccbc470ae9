// Package main is the entry point for the ritobin-lsp language server and CLI.
package main

import (
	"os"

	"github.com/yaklabco/ritobin-lsp/internal/cli"
	"github.com/yaklabco/ritobin-lsp/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// Check outcomes were already reported; only the exit status is left.
		if !cli.IsOutcome(err) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		return cli.ExitCode(err)
	}

	return cli.ExitSuccess
}
