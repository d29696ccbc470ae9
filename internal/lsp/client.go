package lsp

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ClientConfig is what the server learned about the client during
// initialize.
type ClientConfig struct {
	Name           string
	Version        string
	RootPath       string
	WorkspaceRoots []string
	Capabilities   json.RawMessage
	Options        InitializationOptions
}

// IsVSCode reports whether the client is Visual Studio Code.
func (c ClientConfig) IsVSCode() bool {
	return strings.HasPrefix(c.Name, "Visual Studio Code")
}

// IsNeovim reports whether the client is Neovim.
func (c ClientConfig) IsNeovim() bool {
	return c.Name == "Neovim"
}

// NewClientConfig extracts the client configuration from initialize
// parameters. The root falls back to the working directory, and the
// workspace roots fall back to the root.
func NewClientConfig(params *InitializeParams) ClientConfig {
	cfg := ClientConfig{Capabilities: params.Capabilities}
	if params.ClientInfo != nil {
		cfg.Name = params.ClientInfo.Name
		cfg.Version = params.ClientInfo.Version
	}
	if params.InitializationOptions != nil {
		cfg.Options = *params.InitializationOptions
	}

	switch {
	case params.RootURI != nil:
		cfg.RootPath, _ = uriToPath(*params.RootURI)
	case params.RootPath != nil:
		cfg.RootPath = *params.RootPath
	}
	if cfg.RootPath == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.RootPath = wd
		}
	}

	for _, folder := range params.WorkspaceFolders {
		if path, ok := uriToPath(folder.URI); ok {
			cfg.WorkspaceRoots = append(cfg.WorkspaceRoots, path)
		}
	}
	if len(cfg.WorkspaceRoots) == 0 && cfg.RootPath != "" {
		cfg.WorkspaceRoots = []string{cfg.RootPath}
	}
	return cfg
}

// uriToPath converts a file URI to an absolute path.
func uriToPath(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	path := filepath.FromSlash(u.Path)
	if !filepath.IsAbs(path) {
		return "", false
	}
	return filepath.Clean(path), true
}
