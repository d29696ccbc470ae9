// Package runner checks batches of ritobin text files from disk.
package runner

// Options controls a multi-file check.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// walked inside directories. Defaults to DefaultExtensions().
	Extensions []string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	ExcludeGlobs []string

	// IncludeVendored disables the vendored-directory filter.
	IncludeVendored bool

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of files checked at once.
	// 0 or negative means runtime.NumCPU().
	Jobs int

	// MaxDiagnostics caps the diagnostics reported per file.
	// 0 selects analysis.MaxDiagnostics.
	MaxDiagnostics int
}

// DefaultExtensions returns the extensions ritobin writes text files with.
func DefaultExtensions() []string {
	return []string{".py"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
