// Package config defines the configuration types for ritobin-lsp.
// These types are pure data structures; discovery and merging live in
// internal/configloader.
package config

// Log levels accepted by log_level.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// DefaultMaxDiagnostics is the default cap on diagnostics per document.
const DefaultMaxDiagnostics = 20

// OutputFormat specifies the output format of the check command.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatSummary OutputFormat = "summary"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatSummary:
		return true
	default:
		return false
	}
}

// Config is the root configuration structure for ritobin-lsp.
//
// Booleans are pointers so that a file or environment layer can turn a
// setting off; nil means "not set by this layer".
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty" validate:"omitempty,oneof=trace debug info warn warning error"`

	// LogFile receives logs instead of stderr when set.
	LogFile string `yaml:"log_file,omitempty"`

	// MetaPath is the JSON metadata dump used for hover.
	MetaPath string `yaml:"meta_path,omitempty"`

	// WatchMeta reloads the dump when it changes on disk.
	WatchMeta *bool `yaml:"watch_meta,omitempty"`

	// MaxWorkers bounds concurrent handlers; 0 means unbounded.
	MaxWorkers int `yaml:"max_workers,omitempty" validate:"gte=0"`

	// MaxDiagnostics caps the diagnostics published per document.
	MaxDiagnostics int `yaml:"max_diagnostics,omitempty" validate:"gte=0,lte=10000"`

	// EvictOnClose drops documents from the cache on didClose.
	EvictOnClose *bool `yaml:"evict_on_close,omitempty"`

	// StandardTokens restricts semantic tokens to the standard LSP legend.
	StandardTokens *bool `yaml:"standard_tokens,omitempty"`

	// MetricsAddr serves Prometheus metrics at /metrics when set.
	MetricsAddr string `yaml:"metrics_addr,omitempty" validate:"omitempty,hostname_port"`

	// CLI-level options (not persisted to config files).

	// Format is the output format of the check command.
	Format OutputFormat `yaml:"-" validate:"omitempty,oneof=text json summary"`

	// Jobs is the number of files checked in parallel; 0 means GOMAXPROCS.
	Jobs int `yaml:"-" validate:"gte=0"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel:       LevelWarn,
		WatchMeta:      Bool(true),
		MaxDiagnostics: DefaultMaxDiagnostics,
		EvictOnClose:   Bool(true),
		StandardTokens: Bool(false),
		Format:         FormatText,
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// Enabled dereferences an optional setting, falling back to def when unset.
func Enabled(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// ShouldWatchMeta reports whether the metadata dump should be watched.
func (c *Config) ShouldWatchMeta() bool {
	return Enabled(c.WatchMeta, true)
}

// ShouldEvictOnClose reports whether didClose evicts documents.
func (c *Config) ShouldEvictOnClose() bool {
	return Enabled(c.EvictOnClose, true)
}

// UseStandardTokens reports whether semantic tokens use the standard legend.
func (c *Config) UseStandardTokens() bool {
	return Enabled(c.StandardTokens, false)
}
