// Package cli provides the Cobra command structure for ritobin-lsp.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	debug      bool
	verbose    int
	configPath string
	logFile    string
	color      string
}

// NewRootCommand creates the root ritobin-lsp command with all subcommands.
// Without a subcommand it runs the language server.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}
	serverOpts := &serverFlags{}

	rootCmd := &cobra.Command{
		Use:   "ritobin-lsp",
		Short: "Language server for ritobin text files",
		Long: `ritobin-lsp is a language server for the ritobin text format, the
human-readable form of League of Legends property bins.

It reports syntax and type errors, highlights documents with semantic tokens
and shows class metadata on hover. Run without a subcommand to serve the
Language Server Protocol over stdin and stdout.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.debug {
				logging.SetLevel("debug")
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, flags, serverOpts, info)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().CountVarP(&flags.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddGroup(commandGroups()...)
	rootCmd.SetHelpCommandGroupID(GroupSetup)
	rootCmd.SetCompletionCommandGroupID(GroupSetup)

	grouped := []struct {
		group string
		cmd   *cobra.Command
	}{
		{GroupServe, newServerCommand(flags, info)},
		{GroupInspect, newCheckCommand(flags)},
		{GroupInspect, newMetaCommand(flags)},
		{GroupSetup, newInitCommand()},
		{GroupSetup, newEnvCommand()},
	}
	for _, entry := range grouped {
		entry.cmd.GroupID = entry.group
		rootCmd.AddCommand(entry.cmd)
	}
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter(&flags.color).ApplyToCommand(rootCmd)

	return rootCmd
}
