package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/ritobin-lsp/internal/configloader"
	"github.com/yaklabco/ritobin-lsp/internal/logging"
	"github.com/yaklabco/ritobin-lsp/pkg/config"
)

// defaultConfigName is the project configuration file written by init.
const defaultConfigName = ".ritobin-lsp.yml"

type initFlags struct {
	force  bool
	full   bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a ritobin-lsp configuration file",
		Long: `Create a .ritobin-lsp.yml configuration file in the current directory.

The language server finds it by searching upward from its working directory,
stopping at the repository root.

Examples:
  ritobin-lsp init                     Create a commented minimal config
  ritobin-lsp init --full              Write every setting with its default
  ritobin-lsp init --output custom.yml Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Write every setting with its default value")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigName, "Output file path")

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil && flags.force {
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Full: flags.full})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := configloader.WriteConfig(absPath, content, flags.force); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'ritobin-lsp env' to see the environment variables that override it")

	return nil
}
