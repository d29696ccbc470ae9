package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
	"github.com/yaklabco/ritobin-lsp/internal/ui/pretty"
	"github.com/yaklabco/ritobin-lsp/pkg/config"
	"github.com/yaklabco/ritobin-lsp/pkg/meta"
)

// ErrNoDump is returned when no metadata dump is configured.
var ErrNoDump = errors.New("no metadata dump configured; pass --dump or set meta_path")

// ErrClassNotFound is returned when the dump has no class of the given name.
var ErrClassNotFound = errors.New("class not found")

type metaFlags struct {
	dump     string
	html     bool
	markdown bool
}

func newMetaCommand(flags *globalFlags) *cobra.Command {
	opts := &metaFlags{}

	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Inspect the class metadata dump",
		Long: `Inspect the metadata dump the language server uses for hover.

The dump is taken from --dump, or from meta_path in the configuration.`,
	}
	cmd.PersistentFlags().StringVar(&opts.dump, "dump", "", "metadata dump (JSON) to read")

	show := &cobra.Command{
		Use:   "show <class>",
		Short: "Print the hover text of a class",
		Long: `Print the text shown when hovering a class name.

The class is given by name (case-insensitive) or by its hash key, e.g.
0x9b67e9f6.

Examples:
  ritobin-lsp meta show SkinCharacterDataProperties --dump meta.json
  ritobin-lsp meta show 0x9b67e9f6 --markdown
  ritobin-lsp meta show SkinCharacterDataProperties --html > class.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetaShow(cmd, args[0], flags, opts)
		},
	}
	show.Flags().BoolVar(&opts.html, "html", false, "render the hover Markdown as HTML")
	show.Flags().BoolVar(&opts.markdown, "markdown", false, "print the hover Markdown")
	show.MarkFlagsMutuallyExclusive("html", "markdown")

	info := &cobra.Command{
		Use:   "info",
		Short: "Print the version and size of the dump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMetaInfo(cmd, flags, opts)
		},
	}

	cmd.AddCommand(show, info)
	return cmd
}

// loadDump resolves the dump path from flags and configuration and loads it.
func loadDump(cmd *cobra.Command, flags *globalFlags, opts *metaFlags) (*meta.Service, error) {
	set, err := loadSettings(cmd, flags, &config.Config{MetaPath: opts.dump})
	if err != nil {
		return nil, err
	}
	defer func() { _ = set.Close() }()

	path := set.Config.MetaPath
	if path == "" {
		return nil, ErrNoDump
	}

	service := meta.NewService(set.Logger)
	if err := service.Load(path); err != nil {
		return nil, err
	}
	set.Logger.Debug("loaded metadata dump",
		logging.FieldPath, path,
		logging.FieldClasses, service.Len(),
	)
	return service, nil
}

func lookupClass(service *meta.Service, name string) (*meta.Class, bool) {
	if strings.HasPrefix(name, "0x") {
		return service.LookupKey(strings.ToLower(name))
	}
	return service.Lookup(name)
}

func runMetaShow(cmd *cobra.Command, name string, flags *globalFlags, opts *metaFlags) error {
	service, err := loadDump(cmd, flags, opts)
	if err != nil {
		return err
	}

	class, ok := lookupClass(service, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.html:
		return writeClassHTML(out, name, class)
	case opts.markdown:
		doc, err := meta.RenderMarkdown(name, class)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, doc)
		return err
	}

	dump, err := meta.Render(class)
	if err != nil {
		return err
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(flags.color, out))
	fmt.Fprintf(out, "%s %s\n\n%s",
		styles.ClassName.Render(name),
		styles.Version.Render("("+service.Version()+")"),
		dump,
	)
	return nil
}

// writeClassHTML converts the hover Markdown of class to HTML.
func writeClassHTML(out io.Writer, name string, class *meta.Class) error {
	doc, err := meta.RenderMarkdown(name, class)
	if err != nil {
		return err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(doc), &buf); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	if _, err := buf.WriteTo(out); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

func runMetaInfo(cmd *cobra.Command, flags *globalFlags, opts *metaFlags) error {
	service, err := loadDump(cmd, flags, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(flags.color, out))
	fmt.Fprintf(out, "%s %s\n%s %s\n%s %d\n",
		styles.Bold.Render("Dump:   "), service.Path(),
		styles.Bold.Render("Version:"), styles.Version.Render(service.Version()),
		styles.Bold.Render("Classes:"), service.Len(),
	)
	return nil
}
