package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// sniffSize is how much of a file is read to decide whether it is ritobin text.
const sniffSize = 8000

// textHeaders are the magic comments ritobin writes on the first line.
//
//nolint:gochecknoglobals // read-only lookup table
var textHeaders = [][]byte{
	[]byte("#PROP_text"),
	[]byte("#PTCH_text"),
}

// Discovery is the outcome of resolving Options.Paths to files.
type Discovery struct {
	// Files are absolute paths in sorted order.
	Files []string

	// Skipped counts walked files that matched an extension but were binary
	// or not ritobin text.
	Skipped int
}

// Discover resolves opts.Paths to the ritobin text files to check.
//
// Explicit file arguments are always kept. Inside directories, dot entries,
// vendored directories, excluded globs, binary files and files without a
// ritobin header are skipped.
func Discover(ctx context.Context, opts Options) (*Discovery, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	walker := &walker{
		opts:       opts,
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		seen:       make(map[string]struct{}),
	}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if !info.IsDir() {
			walker.add(absPath)
			continue
		}
		// Directories outside the working directory are matched relative to
		// themselves.
		relRoot := walker.rel(absPath)
		if relRoot == ".." || strings.HasPrefix(relRoot, "../") {
			relRoot = "."
		}
		if err := walker.walk(ctx, absPath, relRoot); err != nil {
			return nil, err
		}
	}

	slices.Sort(walker.files)
	return &Discovery{Files: walker.files, Skipped: walker.skipped}, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

type walker struct {
	opts       Options
	workDir    string
	extensions []string
	seen       map[string]struct{}
	files      []string
	skipped    int
}

func (w *walker) add(absPath string) {
	if _, ok := w.seen[absPath]; ok {
		return
	}
	w.seen[absPath] = struct{}{}
	w.files = append(w.files, absPath)
}

func (w *walker) rel(absPath string) string {
	relPath, err := filepath.Rel(w.workDir, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(relPath)
}

// walk visits root, reporting paths below it relative to relRoot so that
// followed symlinks keep the location of the link.
func (w *walker) walk(ctx context.Context, root, relRoot string) error {
	err := filepath.WalkDir(root, func(current string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		relPath := relRoot
		if sub, err := filepath.Rel(root, current); err == nil && sub != "." {
			relPath = path.Join(relRoot, filepath.ToSlash(sub))
		}

		if entry.IsDir() {
			if current != root && w.skipDir(entry.Name(), relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(current)
			if err != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, err := os.Stat(target)
			if err != nil {
				return nil //nolint:nilerr // unreadable symlink targets are skipped
			}
			if info.IsDir() {
				if !w.opts.FollowSymlinks || w.skipDir(entry.Name(), relPath) {
					return nil
				}
				return w.walk(ctx, target, relPath)
			}
		}

		if enry.IsDotFile(current) || !w.matchesFile(relPath) {
			return nil
		}

		ok, err := isRitobinText(current)
		if err != nil || !ok {
			w.skipped++
			return nil //nolint:nilerr // unreadable files are counted as skipped
		}
		w.add(current)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

func (w *walker) skipDir(name, relPath string) bool {
	if enry.IsDotFile(name) {
		return true
	}
	if !w.opts.IncludeVendored && enry.IsVendor(relPath+"/") {
		return true
	}
	return matchesAny(relPath, w.opts.ExcludeGlobs)
}

func (w *walker) matchesFile(relPath string) bool {
	ext := strings.ToLower(path.Ext(relPath))
	if !slices.ContainsFunc(w.extensions, func(e string) bool { return strings.EqualFold(e, ext) }) {
		return false
	}
	if !w.opts.IncludeVendored && enry.IsVendor(relPath) {
		return false
	}
	return !matchesAny(relPath, w.opts.ExcludeGlobs)
}

// isRitobinText reports whether the file at name is a text file that starts
// with a ritobin header, ignoring a UTF-8 byte order mark and leading blanks.
func isRitobinText(name string) (bool, error) {
	file, err := os.Open(name)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	head = head[:n]

	if enry.IsBinary(head) {
		return false, nil
	}

	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	head = bytes.TrimLeft(head, " \t\r\n")
	for _, header := range textHeaders {
		if bytes.HasPrefix(head, header) {
			return true, nil
		}
	}
	return false, nil
}

func matchesAny(relPath string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(pattern string) bool {
		return matchGlob(relPath, pattern)
	})
}

// matchGlob matches a slash separated relative path against pattern.
// A pattern matches the whole path or its base name; "**/" matches any
// number of leading directories and a trailing "/**" matches everything
// below a matching directory.
func matchGlob(relPath, pattern string) bool {
	relPath = filepath.ToSlash(relPath)
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")

	if pattern == "**" {
		return true
	}

	if dirPattern, ok := strings.CutSuffix(pattern, "/**"); ok {
		for dir := relPath; dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
			if matchGlob(dir, dirPattern) {
				return true
			}
		}
		return false
	}

	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		segments := strings.Split(relPath, "/")
		for idx := range segments {
			if matchGlob(strings.Join(segments[idx:], "/"), rest) {
				return true
			}
		}
		return false
	}

	if matched, err := path.Match(pattern, relPath); err == nil && matched {
		return true
	}
	matched, err := path.Match(pattern, path.Base(relPath))
	return err == nil && matched
}
