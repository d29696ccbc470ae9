package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
	"github.com/yaklabco/ritobin-lsp/internal/lsp"
	"github.com/yaklabco/ritobin-lsp/pkg/config"
)

type serverFlags struct {
	metaPath       string
	noWatchMeta    bool
	metricsAddr    string
	maxWorkers     int
	maxDiagnostics int
	standardTokens bool
	keepClosed     bool
}

func newServerCommand(flags *globalFlags, info BuildInfo) *cobra.Command {
	opts := &serverFlags{}

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the language server on stdin and stdout",
		Long: `Run the language server, speaking the Language Server Protocol over
stdin and stdout. Logs go to stderr or to --log-file.

This is what editors start; running ritobin-lsp without a subcommand does the
same.

Examples:
  ritobin-lsp server --meta ~/lol/meta.json
  ritobin-lsp server -vv --log-file /tmp/ritobin-lsp.log
  ritobin-lsp server --metrics-addr 127.0.0.1:9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, flags, opts, info)
		},
	}

	cmd.Flags().StringVar(&opts.metaPath, "meta", "", "metadata dump (JSON) used for hover")
	cmd.Flags().BoolVar(&opts.noWatchMeta, "no-watch-meta", false, "do not reload the metadata dump when it changes")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().IntVar(&opts.maxWorkers, "max-workers", 0, "maximum concurrently running handlers (0 = unbounded)")
	cmd.Flags().IntVar(&opts.maxDiagnostics, "max-diagnostics", 0, "maximum diagnostics published per document")
	cmd.Flags().BoolVar(&opts.standardTokens, "standard-tokens", false, "only use standard semantic token types")
	cmd.Flags().BoolVar(&opts.keepClosed, "keep-closed", false, "keep documents cached after didClose")

	return cmd
}

// config returns the CLI configuration layer. Boolean settings are only set
// when their flag was given, so that files and environment still apply.
func (o *serverFlags) config(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{
		MetaPath:       o.metaPath,
		MetricsAddr:    o.metricsAddr,
		MaxWorkers:     o.maxWorkers,
		MaxDiagnostics: o.maxDiagnostics,
	}
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}
	if changed("no-watch-meta") {
		cfg.WatchMeta = config.Bool(!o.noWatchMeta)
	}
	if changed("standard-tokens") {
		cfg.StandardTokens = config.Bool(o.standardTokens)
	}
	if changed("keep-closed") {
		cfg.EvictOnClose = config.Bool(!o.keepClosed)
	}
	return cfg
}

// serverOptions maps the resolved configuration onto server options.
func serverOptions(cfg *config.Config, info BuildInfo) lsp.Options {
	opts := lsp.DefaultOptions()
	opts.Version = info.Version
	opts.MetaPath = cfg.MetaPath
	opts.WatchMeta = cfg.ShouldWatchMeta()
	opts.MaxWorkers = int64(cfg.MaxWorkers)
	if cfg.MaxDiagnostics > 0 {
		opts.MaxDiagnostics = cfg.MaxDiagnostics
	}
	opts.EvictOnClose = cfg.ShouldEvictOnClose()
	opts.StandardTokens = cfg.UseStandardTokens()
	return opts
}

func runServer(cmd *cobra.Command, flags *globalFlags, opts *serverFlags, info BuildInfo) error {
	set, err := loadSettings(cmd, flags, opts.config(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = set.Close() }()

	logger := set.Logger

	if stdin, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(stdin.Fd())) {
		logger.Warn("stdin is a terminal; ritobin-lsp expects a language client to start it")
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	serverOpts := serverOptions(set.Config, info)
	serverOpts.Logger = logger

	if addr := set.Config.MetricsAddr; addr != "" {
		go func() {
			// ServeMetrics logs its own failures; the server keeps running.
			_ = lsp.ServeMetrics(ctx, addr, logger)
		}()
	}

	logger.Info("Starting server",
		logging.FieldVersion, info.Version,
		logging.FieldWorkers, serverOpts.MaxWorkers,
	)

	server := lsp.NewServer(serverOpts)
	err = server.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	switch {
	case err == nil:
		logger.Info("Server stopped")
		return nil
	case errors.Is(err, context.Canceled):
		logger.Info("Server interrupted")
		return nil
	default:
		return fmt.Errorf("serve: %w", err)
	}
}
