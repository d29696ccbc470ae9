package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/yaklabco/ritobin-lsp/pkg/runner"
)

const ritobinSource = "#PROP_text\ntype: string = \"PROP\"\nversion: u32 = 3\n"

// writeTree creates files relative to dir with the given contents.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

func discover(t *testing.T, opts runner.Options) *runner.Discovery {
	t.Helper()
	found, err := runner.Discover(context.Background(), opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return found
}

func TestDiscover_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Explicit arguments are kept even without a header.
	writeTree(t, dir, map[string]string{"notes.txt": "plain"})
	file := filepath.Join(dir, "notes.txt")

	found := discover(t, runner.Options{Paths: []string{file}, WorkingDir: dir})

	if len(found.Files) != 1 || found.Files[0] != file {
		t.Fatalf("expected [%s], got %v", file, found.Files)
	}
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"skin0.py":                 ritobinSource,
		"data/characters/skin1.py": ritobinSource,
		"setup_tool.py":            "import os\nprint(os.getcwd())\n",
		"data/readme.txt":          ritobinSource,
		"data/patch.py":            "#PTCH_text\n",
	})

	found := discover(t, runner.Options{WorkingDir: dir})

	expected := []string{
		filepath.Join(dir, "data/characters/skin1.py"),
		filepath.Join(dir, "data/patch.py"),
		filepath.Join(dir, "skin0.py"),
	}
	if !slices.Equal(found.Files, expected) {
		t.Errorf("expected %v, got %v", expected, found.Files)
	}
	if found.Skipped != 1 {
		t.Errorf("expected 1 skipped file, got %d", found.Skipped)
	}
}

func TestDiscover_HeaderAfterBOM(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"bom.py": "\xef\xbb\xbf\n#PROP_text\n"})

	found := discover(t, runner.Options{WorkingDir: dir})

	if len(found.Files) != 1 {
		t.Fatalf("expected 1 file, got %v", found.Files)
	}
}

func TestDiscover_SkipsBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"blob.py": "#PROP_text\x00\x01\x02",
		"ok.py":   ritobinSource,
	})

	found := discover(t, runner.Options{WorkingDir: dir})

	if len(found.Files) != 1 || filepath.Base(found.Files[0]) != "ok.py" {
		t.Fatalf("expected only ok.py, got %v", found.Files)
	}
	if found.Skipped != 1 {
		t.Errorf("expected 1 skipped file, got %d", found.Skipped)
	}
}

func TestDiscover_CustomExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py":  ritobinSource,
		"b.txt": ritobinSource,
	})

	found := discover(t, runner.Options{WorkingDir: dir, Extensions: []string{".TXT"}})

	if len(found.Files) != 1 || filepath.Base(found.Files[0]) != "b.txt" {
		t.Fatalf("expected only b.txt, got %v", found.Files)
	}
}

func TestDiscover_HiddenAndVendored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py":                  ritobinSource,
		".hidden.py":            ritobinSource,
		".cache/b.py":           ritobinSource,
		"vendor/c.py":           ritobinSource,
		"node_modules/pkg/d.py": ritobinSource,
	})

	found := discover(t, runner.Options{WorkingDir: dir})
	if len(found.Files) != 1 || filepath.Base(found.Files[0]) != "a.py" {
		t.Fatalf("expected only a.py, got %v", found.Files)
	}

	found = discover(t, runner.Options{WorkingDir: dir, IncludeVendored: true})
	if len(found.Files) != 3 {
		t.Fatalf("expected vendored files with IncludeVendored, got %v", found.Files)
	}
}

func TestDiscover_ExcludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"keep.py":          ritobinSource,
		"old/a.py":         ritobinSource,
		"deep/old/b.py":    ritobinSource,
		"maps/c_backup.py": ritobinSource,
	})

	tests := []struct {
		name     string
		patterns []string
		expected []string
	}{
		{
			name:     "directory suffix",
			patterns: []string{"old/**"},
			expected: []string{"keep.py", "maps/c_backup.py"},
		},
		{
			name:     "anywhere prefix",
			patterns: []string{"**/*_backup.py"},
			expected: []string{"deep/old/b.py", "keep.py", "old/a.py"},
		},
		{
			name:     "base name",
			patterns: []string{"keep.py"},
			expected: []string{"deep/old/b.py", "maps/c_backup.py", "old/a.py"},
		},
		{
			name:     "everything",
			patterns: []string{"**"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			found := discover(t, runner.Options{WorkingDir: dir, ExcludeGlobs: tt.patterns})

			var got []string
			for _, file := range found.Files {
				rel, err := filepath.Rel(dir, file)
				if err != nil {
					t.Fatalf("rel: %v", err)
				}
				got = append(got, filepath.ToSlash(rel))
			}
			if !slices.Equal(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDiscover_OutsideWorkingDir(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	target := t.TempDir()
	writeTree(t, target, map[string]string{
		"skin0.py":           ritobinSource,
		"generated/skin1.py": ritobinSource,
	})

	found := discover(t, runner.Options{
		Paths:        []string{target},
		WorkingDir:   workDir,
		ExcludeGlobs: []string{"generated/**"},
	})

	expected := []string{filepath.Join(target, "skin0.py")}
	if !slices.Equal(found.Files, expected) {
		t.Errorf("expected %v, got %v", expected, found.Files)
	}
}

func TestDiscover_Deduplication(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.py": ritobinSource})

	found := discover(t, runner.Options{
		WorkingDir: dir,
		Paths:      []string{".", "a.py", filepath.Join(dir, "a.py")},
	})

	if len(found.Files) != 1 {
		t.Fatalf("expected 1 file after deduplication, got %v", found.Files)
	}
}

func TestDiscover_NonExistentPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: t.TempDir(),
		Paths:      []string{"missing"},
	})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.py": ritobinSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Discover(ctx, runner.Options{WorkingDir: dir}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestDiscover_DirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"linked.py": ritobinSource})
	writeTree(t, dir, map[string]string{"a.py": ritobinSource})
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	found := discover(t, runner.Options{WorkingDir: dir})
	if len(found.Files) != 1 {
		t.Fatalf("expected symlinked directory to be ignored, got %v", found.Files)
	}

	found = discover(t, runner.Options{WorkingDir: dir, FollowSymlinks: true})
	if len(found.Files) != 2 {
		t.Fatalf("expected symlinked directory to be followed, got %v", found.Files)
	}
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	if got := runner.DefaultExtensions(); !slices.Equal(got, []string{".py"}) {
		t.Errorf("unexpected default extensions %v", got)
	}
}
