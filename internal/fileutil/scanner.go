package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Extensions is a list of file extensions to include (e.g., ".md")
	Extensions []string
	// Recursive enables recursive directory scanning
	Recursive bool
	// ExcludeDirs is a list of directory names to skip (hidden dirs are always skipped)
	ExcludeDirs []string
	// ExcludeFiles is a list of base names to skip, compared case-insensitively
	ExcludeFiles []string
	// MaxDepth limits recursion depth (0 = unlimited, 1 = current dir only)
	MaxDepth int
}

// ScanResult contains the results of a scan
type ScanResult struct {
	// Files contains the cleaned paths of all matched files, sorted
	Files []string
	// Errors contains any non-fatal errors encountered during scanning
	Errors []error
}

// DefaultMarkdownOptions returns the options used for documentation trees.
func DefaultMarkdownOptions() ScanOptions {
	return ScanOptions{
		Extensions:   []string{".md", ".markdown"},
		Recursive:    true,
		ExcludeDirs:  []string{"node_modules", "vendor"},
		ExcludeFiles: []string{"CHANGELOG.md", "CONTRIBUTING.md"},
	}
}

// ScanDirectory scans a directory for files matching the provided options.
// Paths keep the form of dir: a relative dir yields relative paths.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	root := filepath.Clean(dir)
	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	extMap := make(map[string]bool)
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	excludeDirs := make(map[string]bool)
	for _, name := range opts.ExcludeDirs {
		excludeDirs[name] = true
	}
	excludeFiles := make(map[string]bool)
	for _, name := range opts.ExcludeFiles {
		excludeFiles[strings.ToLower(name)] = true
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // Continue walking
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if excludeDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !opts.Recursive {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 {
				relPath, _ := filepath.Rel(root, path)
				depth := strings.Count(relPath, string(filepath.Separator)) + 1
				if depth >= opts.MaxDepth {
					return filepath.SkipDir
				}
			}
			return nil
		}

		name := d.Name()
		if excludeFiles[strings.ToLower(name)] {
			return nil
		}
		if len(extMap) > 0 && !extMap[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		result.Files = append(result.Files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}

// CollectMarkdown expands paths into the documents to analyze. Directories
// are scanned with opts; anything else, including paths that cannot be
// stat'ed, is taken as given so the failed read is reported against that
// document. The result is sorted and contains each path once.
func CollectMarkdown(paths []string, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			result.Files = append(result.Files, path)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			add(p)
			continue
		}

		scanned, err := ScanDirectory(p, opts)
		if err != nil {
			return nil, err
		}
		for _, f := range scanned.Files {
			add(f)
		}
		result.Errors = append(result.Errors, scanned.Errors...)
	}

	sort.Strings(result.Files)
	return result, nil
}
