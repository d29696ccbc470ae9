package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/ritobin-lsp/internal/configloader"
	"github.com/yaklabco/ritobin-lsp/internal/logging"
	"github.com/yaklabco/ritobin-lsp/pkg/config"
)

// ErrConfig wraps failures to load or validate configuration.
var ErrConfig = errors.New("failed to load configuration")

// settings is the resolved configuration of one command invocation.
type settings struct {
	Config *config.Config
	Logger *log.Logger
	Load   *configloader.LoadResult

	closer io.Closer
}

// Close releases the log file, if one was opened.
func (s *settings) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// apply copies the global flags onto the CLI layer of the configuration.
func (g *globalFlags) apply(cliCfg *config.Config) {
	if g.logFile != "" {
		cliCfg.LogFile = g.logFile
	}
	switch {
	case g.debug || g.verbose >= 2:
		cliCfg.LogLevel = config.LevelDebug
	case g.verbose == 1:
		cliCfg.LogLevel = config.LevelInfo
	}
}

// loadSettings resolves the layered configuration and builds the logger it
// describes. cliCfg holds the values set by command flags.
func loadSettings(cmd *cobra.Command, flags *globalFlags, cliCfg *config.Config) (*settings, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cliCfg == nil {
		cliCfg = &config.Config{}
	}
	flags.apply(cliCfg)

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: flags.configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	cfg := loaded.Config
	result := &settings{Config: cfg, Load: loaded}

	if cfg.LogFile != "" {
		logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, errors.Join(ErrConfig, err)
		}
		result.Logger = logger
		result.closer = closer
	} else {
		result.Logger = logging.New(cfg.LogLevel)
	}
	logging.SetDefault(result.Logger)

	for _, warning := range loaded.Warnings {
		result.Logger.Warn(warning)
	}
	if len(loaded.LoadedFrom) > 0 {
		result.Logger.Debug("loaded configuration", logging.FieldPaths, loaded.LoadedFrom)
	}

	return result, nil
}
