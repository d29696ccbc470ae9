package config

import (
	"bytes"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default value instead of a
	// commented minimal template.
	Full bool
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate()
	}
	return generateMinimalTemplate(), nil
}

func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Log level: debug, info, warn or error
log_level: warn

# Write logs to a file instead of stderr
# log_file: /tmp/ritobin-lsp.log

# Metadata dump used for hover. Clients may override it with
# initializationOptions.metaPath.
# meta_path: /path/to/meta.json

# Reload the metadata dump when it changes
# watch_meta: true

# Maximum concurrently running handlers (0 = unbounded)
# max_workers: 0

# Maximum diagnostics published per document
# max_diagnostics: 20

# Drop closed documents from the cache
# evict_on_close: true

# Only emit standard LSP semantic token types
# standard_tokens: false

# Serve Prometheus metrics at /metrics
# metrics_addr: 127.0.0.1:9464
`)

	return buf.Bytes()
}

func generateFullTemplate() ([]byte, error) {
	cfg := NewConfig()
	content, err := cfg.ToYAMLWithHeader(DefaultTemplateHeader() + "\n#\n# Every setting is listed with its default value.")
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return content, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# ritobin-lsp configuration
# See: https://github.com/yaklabco/ritobin-lsp`
}
