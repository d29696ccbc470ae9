package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
	"github.com/yaklabco/ritobin-lsp/pkg/runner"
)

func TestRun_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := runner.Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})

	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Zero(t, result.Skipped)
}

func TestRun_CollectsDiagnosticsInPathOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"b.py": ritobinSource + "broken: nope = 1\n",
		"a.py": ritobinSource,
		"c.py": ritobinSource + "}\n",
	})

	result, err := runner.Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 2})
	require.NoError(t, err)
	require.Len(t, result.Files, 3)

	assert.Equal(t, filepath.Join(dir, "a.py"), result.Files[0].Path)
	assert.Empty(t, result.Files[0].Diagnostics)

	assert.Equal(t, filepath.Join(dir, "b.py"), result.Files[1].Path)
	require.Len(t, result.Files[1].Diagnostics, 1)
	assert.Equal(t, analysis.OriginTypeCheck, result.Files[1].Diagnostics[0].Origin)

	assert.Equal(t, filepath.Join(dir, "c.py"), result.Files[2].Path)
	require.NotEmpty(t, result.Files[2].Diagnostics)
	assert.Equal(t, analysis.OriginParse, result.Files[2].Diagnostics[0].Origin)
}

func TestRun_MaxDiagnostics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var src strings.Builder
	src.WriteString(ritobinSource)
	for range 10 {
		src.WriteString("x: nope = 1\n")
	}
	writeTree(t, dir, map[string]string{"many.py": src.String()})

	result, err := runner.Run(context.Background(), runner.Options{WorkingDir: dir, MaxDiagnostics: 3})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Len(t, result.Files[0].Diagnostics, 3)
}

func TestRun_ReportsSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py":     ritobinSource,
		"other.py": "print('hello')\n",
	})

	result, err := runner.Run(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)
	assert.Equal(t, 1, result.Skipped)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.py": ritobinSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, runner.Options{WorkingDir: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckFile_Missing(t *testing.T) {
	t.Parallel()

	result := runner.CheckFile(filepath.Join(t.TempDir(), "missing.py"), 0)

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, os.ErrNotExist)
}

func TestCheckFile_InvalidUTF8(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"bad.py": "#PROP_text\n\xff\xfe"})

	result := runner.CheckFile(filepath.Join(dir, "bad.py"), 0)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "not valid UTF-8")
}

func TestCheckFile_ReportSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.py": ritobinSource})

	result := runner.CheckFile(filepath.Join(dir, "a.py"), 0)

	require.NoError(t, result.Err)
	assert.Equal(t, ritobinSource, result.Source)
	assert.NotNil(t, result.Lines)
}
