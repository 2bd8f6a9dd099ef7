// Copyright © 2024 The BPLint authors

package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// expandArgs expands arguments into the list of files to lint. Directories
// and patterns ending with "/..." expand to all files under them with one of
// the given extensions. Other arguments pass through unchanged. Paths
// matching an exclude pattern are dropped and duplicates are removed,
// keeping the first occurrence.
func expandArgs(args, exts, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		dir, recursive := strings.CutSuffix(arg, "/...")
		if recursive && dir == "" {
			dir = "."
		}
		if !recursive {
			info, err := os.Stat(arg)
			if err == nil && info.IsDir() {
				dir, recursive = arg, true
			}
		}
		if !recursive {
			out = append(out, arg)
			continue
		}
		files, err := findFiles(dir, exts, excludes)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", arg, err)
		}
		out = append(out, files...)
	}
	return dedupe(filterExcludes(out, excludes)), nil
}

// findFiles walks root for files with one of the given extensions,
// skipping excluded directories entirely.
func findFiles(root string, exts, excludes []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && matchesAny(path, excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(exts, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// filterExcludes removes paths matching any of the exclude patterns.
func filterExcludes(paths, excludes []string) []string {
	if len(excludes) == 0 {
		return paths
	}
	var out []string
	for _, p := range paths {
		if !matchesAny(p, excludes) {
			out = append(out, p)
		}
	}
	return out
}

// matchesAny reports whether path matches one of the patterns. A pattern
// matches the full path, the base name, or any single path component.
func matchesAny(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	parts := strings.Split(path, "/")
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		for _, part := range parts {
			if ok, _ := filepath.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0:0]
	for _, p := range paths {
		key := filepath.Clean(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
