package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ritobin-lsp/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		clone := c.Clone()
		assert.Nil(t, clone)
	})

	t.Run("empty config", func(t *testing.T) {
		c := &config.Config{}
		clone := c.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, c, clone)
		assert.Nil(t, clone.WatchMeta)
	})

	t.Run("deep copies optional booleans", func(t *testing.T) {
		original := &config.Config{WatchMeta: config.Bool(true)}

		clone := original.Clone()
		require.NotNil(t, clone)
		require.NotNil(t, clone.WatchMeta)
		assert.NotSame(t, original.WatchMeta, clone.WatchMeta)

		*clone.WatchMeta = false
		assert.True(t, *original.WatchMeta)
	})

	t.Run("preserves all fields", func(t *testing.T) {
		original := &config.Config{
			LogLevel:       config.LevelDebug,
			LogFile:        "/tmp/lsp.log",
			MetaPath:       "/data/meta.json",
			WatchMeta:      config.Bool(false),
			MaxWorkers:     8,
			MaxDiagnostics: 50,
			EvictOnClose:   config.Bool(false),
			StandardTokens: config.Bool(true),
			MetricsAddr:    "127.0.0.1:9464",
			Format:         config.FormatJSON,
			Jobs:           4,
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.Equal(t, original, clone)
	})
}

func TestConfigToYAML(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var cfg *config.Config
		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("basic config serializes", func(t *testing.T) {
		cfg := &config.Config{
			LogLevel:  config.LevelInfo,
			MetaPath:  "meta.json",
			WatchMeta: config.Bool(false),
			Format:    config.FormatJSON,
		}

		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Contains(t, string(data), "log_level: info")
		assert.Contains(t, string(data), "meta_path: meta.json")
		assert.Contains(t, string(data), "watch_meta: false")
		assert.NotContains(t, string(data), "max_workers")
		assert.NotContains(t, string(data), "format", "CLI-only fields are not persisted")
	})

	t.Run("header", func(t *testing.T) {
		cfg := &config.Config{LogLevel: config.LevelWarn}
		data, err := cfg.ToYAMLWithHeader("# header")
		require.NoError(t, err)
		assert.Equal(t, "# header\n\nlog_level: warn\n", string(data))
	})
}

func TestFromYAML(t *testing.T) {
	t.Run("parses valid YAML", func(t *testing.T) {
		yaml := []byte(`
log_level: debug
meta_path: /data/meta.json
watch_meta: false
max_workers: 4
metrics_addr: localhost:9000
`)
		cfg, err := config.FromYAML(yaml)
		require.NoError(t, err)
		assert.Equal(t, config.LevelDebug, cfg.LogLevel)
		assert.Equal(t, "/data/meta.json", cfg.MetaPath)
		require.NotNil(t, cfg.WatchMeta)
		assert.False(t, *cfg.WatchMeta)
		assert.Equal(t, 4, cfg.MaxWorkers)
		assert.Equal(t, "localhost:9000", cfg.MetricsAddr)
	})

	t.Run("absent keys stay unset", func(t *testing.T) {
		cfg, err := config.FromYAML([]byte(`log_level: info`))
		require.NoError(t, err)
		assert.Nil(t, cfg.WatchMeta)
		assert.Nil(t, cfg.EvictOnClose)
		assert.Zero(t, cfg.MaxDiagnostics)
	})

	t.Run("invalid YAML", func(t *testing.T) {
		_, err := config.FromYAML([]byte("log_level: [unclosed"))
		assert.Error(t, err)
	})
}
