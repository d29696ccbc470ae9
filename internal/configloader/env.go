package configloader

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/yaklabco/ritobin-lsp/pkg/config"
)

// envVarPrefix is the prefix for all ritobin-lsp environment variables.
const envVarPrefix = "RITOBIN_LSP_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"LOG_LEVEL":       {field: "log_level", typ: envTypeString, help: "Log level: debug, info, warn or error"},
	"LOG_FILE":        {field: "log_file", typ: envTypeString, help: "Write logs to this file instead of stderr"},
	"META_PATH":       {field: "meta_path", typ: envTypeString, help: "Metadata dump used for hover"},
	"WATCH_META":      {field: "watch_meta", typ: envTypeBool, help: "Reload the metadata dump on change: true or false"},
	"MAX_WORKERS":     {field: "max_workers", typ: envTypeInt, help: "Maximum concurrent handlers (0 = unbounded)"},
	"MAX_DIAGNOSTICS": {field: "max_diagnostics", typ: envTypeInt, help: "Maximum diagnostics per document"},
	"EVICT_ON_CLOSE":  {field: "evict_on_close", typ: envTypeBool, help: "Drop closed documents from the cache: true or false"},
	"STANDARD_TOKENS": {field: "standard_tokens", typ: envTypeBool, help: "Only emit standard semantic token types: true or false"},
	"METRICS_ADDR":    {field: "metrics_addr", typ: envTypeString, help: "Serve Prometheus metrics on this address"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with RITOBIN_LSP_ (e.g.,
// RITOBIN_LSP_META_PATH); RB_LOG and RB_LOG_FILE are accepted as aliases.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for suffix, mapping := range envMappings {
		value, envVar := lookupEnv(suffix)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "log_level":
		cfg.LogLevel = value
	case "log_file":
		cfg.LogFile = value
	case "meta_path":
		cfg.MetaPath = value
	case "metrics_addr":
		cfg.MetricsAddr = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "watch_meta":
		cfg.WatchMeta = config.Bool(value)
	case "evict_on_close":
		cfg.EvictOnClose = config.Bool(value)
	case "standard_tokens":
		cfg.StandardTokens = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "max_workers":
		cfg.MaxWorkers = value
	case "max_diagnostics":
		cfg.MaxDiagnostics = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes a supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns all supported environment variables sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings)+len(legacyEnvAliases))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Description: mapping.help})
	}
	for alias, target := range legacyEnvAliases {
		vars = append(vars, EnvVar{Name: alias, Description: "Alias for " + envVarPrefix + target})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
