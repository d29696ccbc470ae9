package cli

import (
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/ritobin-lsp/internal/ui/pretty"
)

// Command group IDs shown as sections in the root help.
const (
	GroupServe   = "serve"
	GroupInspect = "inspect"
	GroupSetup   = "setup"
)

// commandGroups lists the root help sections in display order.
func commandGroups() []*cobra.Group {
	return []*cobra.Group{
		{ID: GroupServe, Title: "Language Server:"},
		{ID: GroupInspect, Title: "Checking and Metadata:"},
		{ID: GroupSetup, Title: "Configuration:"},
	}
}

// helpPalette holds the lipgloss styles used by the help templates.
type helpPalette struct {
	command lipgloss.Style
	heading lipgloss.Style
	name    lipgloss.Style
	flag    lipgloss.Style
	dim     lipgloss.Style
}

func newHelpPalette(color bool) helpPalette {
	if !color {
		plain := lipgloss.NewStyle()
		return helpPalette{command: plain, heading: plain, name: plain, flag: plain, dim: plain}
	}
	return helpPalette{
		command: lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		heading: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		name:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		flag:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders grouped, optionally colored help for the command tree.
// The color mode is read when help is printed, after flags are parsed.
type HelpFormatter struct {
	colorMode *string
}

// NewHelpFormatter creates a formatter that follows the value behind colorMode.
func NewHelpFormatter(colorMode *string) *HelpFormatter {
	return &HelpFormatter{colorMode: colorMode}
}

const helpTemplate = `{{with (or .Long .Short)}}{{ trimRight . }}

{{end}}{{ heading "Usage:" }}{{if .Runnable}}
  {{ command .UseLine }}{{end}}{{if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}
{{- if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}
{{- end}}
{{- if .HasAvailableSubCommands}}
{{- $cmds := .Commands}}
{{- if eq (len .Groups) 0}}

{{ heading "Commands:" }}{{range $cmds}}{{if listed .}}
  {{ name (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- else}}
{{- range $group := .Groups}}

{{ heading $group.Title }}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (listed .))}}
  {{ name (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}
{{- if not .AllChildCommandsHaveGroup}}

{{ heading "Other Commands:" }}{{range $cmds}}{{if (and (eq .GroupID "") (listed .))}}
  {{ name (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}
{{- end}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags.FlagUsages }}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags.FlagUsages }}
{{- end}}
{{- if not .HasParent}}

Environment variables override the config file; see "{{ command (print .CommandPath " env") }}".
{{- end}}
{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

// ApplyToCommand installs the help and usage functions on cmd. Cobra
// inherits them down the tree, so applying to the root covers every command.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := h.render(command.OutOrStdout(), command); err != nil {
			command.PrintErrln(err)
		}
	})
	cmd.SetUsageFunc(func(command *cobra.Command) error {
		return h.render(command.OutOrStderr(), command)
	})
}

func (h *HelpFormatter) render(w io.Writer, cmd *cobra.Command) error {
	mode := "auto"
	if h.colorMode != nil && *h.colorMode != "" {
		mode = *h.colorMode
	}
	palette := newHelpPalette(pretty.IsColorEnabled(mode, w))

	tmpl, err := template.New("help").Funcs(template.FuncMap{
		"command":   palette.command.Render,
		"heading":   palette.heading.Render,
		"name":      palette.name.Render,
		"dim":       palette.dim.Render,
		"flags":     palette.flagUsages,
		"rpad":      rpad,
		"trimRight": func(s string) string { return strings.TrimRight(s, " \t\n") },
		"listed": func(c *cobra.Command) bool {
			return c.IsAvailableCommand() || c.Name() == "help"
		},
	}).Parse(helpTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, cmd)
}

// flagUsages colors the flag names in pflag's usage block and dims the
// value placeholders, leaving descriptions alone.
func (p helpPalette) flagUsages(usages string) string {
	lines := strings.Split(strings.TrimRight(usages, "\n"), "\n")
	for i, line := range lines {
		head, desc, ok := splitFlagLine(line)
		if !ok {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		lines[i] = indent + p.styleFlagHead(head) + "   " + desc
	}
	return strings.Join(lines, "\n")
}

func (p helpPalette) styleFlagHead(head string) string {
	fields := strings.Fields(head)
	for i, field := range fields {
		if !strings.HasPrefix(field, "-") {
			fields[i] = p.dim.Render(field)
			continue
		}
		if trimmed, comma := strings.CutSuffix(field, ","); comma {
			fields[i] = p.flag.Render(trimmed) + ","
		} else {
			fields[i] = p.flag.Render(field)
		}
	}
	return strings.Join(fields, " ")
}

// splitFlagLine splits "  -v, --verbose count   text" at the first run of
// two or more spaces after the flag names.
func splitFlagLine(line string) (head, desc string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "-") {
		return "", "", false
	}
	idx := strings.Index(trimmed, "  ")
	if idx < 0 {
		return "", "", false
	}
	return trimmed[:idx], strings.TrimLeft(trimmed[idx:], " "), true
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}
