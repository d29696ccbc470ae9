package configloader

import "github.com/yaklabco/ritobin-lsp/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Optional booleans: override overwrites base if set, so a later layer
//     can switch a setting off
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.LogFile != "" {
		result.LogFile = override.LogFile
	}
	if override.MetaPath != "" {
		result.MetaPath = override.MetaPath
	}
	if override.MetricsAddr != "" {
		result.MetricsAddr = override.MetricsAddr
	}
	if override.MaxWorkers != 0 {
		result.MaxWorkers = override.MaxWorkers
	}
	if override.MaxDiagnostics != 0 {
		result.MaxDiagnostics = override.MaxDiagnostics
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	result.WatchMeta = mergeBool(base.WatchMeta, override.WatchMeta)
	result.EvictOnClose = mergeBool(base.EvictOnClose, override.EvictOnClose)
	result.StandardTokens = mergeBool(base.StandardTokens, override.StandardTokens)

	return &result
}

// mergeBool returns a copy of override when set, else a copy of base.
func mergeBool(base, override *bool) *bool {
	if override != nil {
		return config.Bool(*override)
	}
	if base != nil {
		return config.Bool(*base)
	}
	return nil
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
