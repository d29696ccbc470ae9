package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/ritobin-lsp/internal/configloader"
)

const formatJSON = "json"

// envInfo represents an environment variable in JSON output.
type envInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Value       string `json:"value,omitempty"`
}

func newEnvCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "List the environment variables ritobin-lsp reads",
		Long: `List the environment variables that override configuration files,
with their current values. Command-line flags override them in turn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vars := configloader.ListEnvVars()
			infos := make([]envInfo, 0, len(vars))
			for _, v := range vars {
				infos = append(infos, envInfo{
					Name:        v.Name,
					Description: v.Description,
					Value:       os.Getenv(v.Name),
				})
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(infos); err != nil {
					return fmt.Errorf("encoding environment: %w", err)
				}
				return nil
			}

			width := 0
			for _, info := range infos {
				width = max(width, len(info.Name))
			}
			for _, info := range infos {
				line := fmt.Sprintf("%s  %s", rpad(info.Name, width), info.Description)
				if info.Value != "" {
					line += fmt.Sprintf(" [%s]", info.Value)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")

	return cmd
}
