package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Pattern is a regex matched against the slash-separated relative path
	Pattern string
	// Recursive enables recursive directory scanning
	Recursive bool
	// ExcludeDirs is a list of directory names to exclude
	ExcludeDirs []string
	// MaxDepth limits recursion depth (0 = unlimited, 1 = current dir only)
	MaxDepth int
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains slash-separated paths relative to the scanned root
	Files []string
	// Errors contains any errors encountered during scanning
	Errors []error
}

// IsHidden reports whether a directory entry name marks a hidden file.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ScanDirectory scans a directory for files matching the provided options.
// A missing root is not an error and produces an empty result.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var patternRegex *regexp.Regexp
	if opts.Pattern != "" {
		patternRegex, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	excludeMap := make(map[string]bool)
	for _, name := range opts.ExcludeDirs {
		excludeMap[name] = true
	}

	w := &walker{
		opts:    opts,
		pattern: patternRegex,
		exclude: excludeMap,
		visited: make(map[string]bool),
		result:  result,
	}
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		w.visited[real] = true
	}
	if err := w.walk(dir, ""); err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	// Sort files for consistent output
	sort.Strings(result.Files)

	return result, nil
}

// walker carries the state of one ScanDirectory call. Symlinked directories
// are descended into like ordinary ones; visited holds the resolved path of
// every directory entered so that link cycles are walked once.
type walker struct {
	opts    ScanOptions
	pattern *regexp.Regexp
	exclude map[string]bool
	visited map[string]bool
	result  *ScanResult
}

// walk scans dir, reporting paths relative to the scan root as prefix+rel.
// The trailing separator makes WalkDir enter dir even when it is a link.
func (w *walker) walk(dir, prefix string) error {
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.result.Errors = append(w.result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // Continue walking
		}

		// Skip the directory being walked itself
		if path == dir {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			w.result.Errors = append(w.result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		relPath = prefix + filepath.ToSlash(relPath)

		if d.IsDir() {
			if !w.enterDir(d.Name(), relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				w.result.Errors = append(w.result.Errors, fmt.Errorf("broken link %s: %w", path, err))
				return nil
			}
			if info.IsDir() {
				return w.followLink(path, d.Name(), relPath)
			}
		}

		if IsHidden(d.Name()) {
			return nil
		}
		if w.pattern != nil && !w.pattern.MatchString(relPath) {
			return nil
		}

		w.result.Files = append(w.result.Files, relPath)
		return nil
	})
}

// enterDir reports whether the directory at relPath is scanned.
func (w *walker) enterDir(name, relPath string) bool {
	if w.exclude[name] || IsHidden(name) || !w.opts.Recursive {
		return false
	}
	if w.opts.MaxDepth > 0 && strings.Count(relPath, "/")+1 >= w.opts.MaxDepth {
		return false
	}
	return true
}

// followLink walks the directory a symlink points to, once per target.
func (w *walker) followLink(path, name, relPath string) error {
	if !w.enterDir(name, relPath) {
		return nil
	}
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.result.Errors = append(w.result.Errors, fmt.Errorf("failed to resolve link %s: %w", path, err))
		return nil
	}
	if w.visited[real] {
		return nil
	}
	w.visited[real] = true
	return w.walk(path, relPath+"/")
}
