// Package extract collects the strings of an application's sources.
//
// Source directories are scanned recursively for translation exports
// (.lg) and existing strings tables (.strings). Objective-C, C and Swift
// sources can additionally be run through Apple's genstrings utility.
//
// Within one directory a later file overrides an earlier one for the same
// key; across directories the first directory that defines a key wins.
package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/stringsync/lgfile"
	"github.com/minios-linux/stringsync/merge"
	sf "github.com/minios-linux/stringsync/stringsfile"
)

// Scannable file kinds.
const (
	KindExport  = "export"
	KindStrings = "strings"
)

// SupportedExtensions maps scannable file extensions to their kind.
var SupportedExtensions = map[string]string{
	".lg":      KindExport,
	".strings": KindStrings,
}

// DefaultExtensions are scanned when no extensions are configured.
var DefaultExtensions = []string{".lg"}

// GenstringsExtensions are the source files genstrings understands.
var GenstringsExtensions = map[string]bool{
	".m":     true,
	".mm":    true,
	".c":     true,
	".h":     true,
	".swift": true,
}

// skipDirs contains directory names to skip during source file scanning.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"Pods":         true,
	"Carthage":     true,
	"DerivedData":  true,
	"build":        true,
	".build":       true,
}

// NormalizeExtensions returns exts with a leading dot on each entry,
// deduplicated. Nil or empty input yields DefaultExtensions.
func NormalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return DefaultExtensions
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// FindSources recursively finds files with one of exts in dirs.
// Skips VCS, dependency and build directories. The result is sorted.
func FindSources(dirs, exts []string) ([]string, error) {
	want := make(map[string]bool)
	for _, e := range NormalizeExtensions(exts) {
		want[e] = true
	}

	var files []string
	seen := make(map[string]bool)

	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Error walking path")
				return nil
			}
			if info.IsDir() {
				if path != dir && skipDirs[info.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if want[filepath.Ext(path)] && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ScanFile reads the records of a single scannable file.
func ScanFile(path string) (sf.Mapping, error) {
	switch SupportedExtensions[filepath.Ext(path)] {
	case KindExport:
		return lgfile.ReadFile(path), nil
	case KindStrings:
		return sf.ReadStrings(path)
	}
	return nil, fmt.Errorf("unsupported file type: %s", path)
}

// ScanDir collects the records of every file with one of exts under dir.
// Files that cannot be read are logged and skipped.
func ScanDir(dir string, exts []string) (sf.Mapping, error) {
	files, err := FindSources([]string{dir}, exts)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", dir).Str("files", DescribeFiles(files)).Msg("Scanning sources")

	result := make(sf.Mapping)
	for _, f := range files {
		log.Debug().Str("path", f).Msg("Found")
		m, err := ScanFile(f)
		if err != nil {
			log.Warn().Err(err).Str("path", f).Msg("Skipping file")
			continue
		}
		for _, r := range m {
			result.Add(r)
		}
	}
	return result, nil
}

// ScanDirs scans each directory in turn and merges the results; a key
// found in an earlier directory is not replaced by a later one.
// Every entry of dirs must be an existing directory.
func ScanDirs(dirs, exts []string) (sf.Mapping, error) {
	result := make(sf.Mapping)
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("input path %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("input path is not a folder: %s", dir)
		}

		m, err := ScanDir(dir, exts)
		if err != nil {
			return nil, err
		}
		result = merge.Merge(result, m)
	}
	return result, nil
}

// FindGenstringsSources finds the files under dirs that genstrings can read.
func FindGenstringsSources(dirs []string) ([]string, error) {
	exts := make([]string, 0, len(GenstringsExtensions))
	for e := range GenstringsExtensions {
		exts = append(exts, e)
	}
	return FindSources(dirs, exts)
}

// RunGenstrings runs genstrings on files and returns the strings it
// generated, across all tables. genstrings ships with the Xcode command
// line tools; its absence is an error.
func RunGenstrings(ctx context.Context, files []string) (sf.Mapping, error) {
	result := make(sf.Mapping)
	if len(files) == 0 {
		return result, nil
	}

	genstringsPath, err := exec.LookPath("genstrings")
	if err != nil {
		return nil, fmt.Errorf("genstrings not found; install the Xcode command line tools")
	}

	outDir, err := os.MkdirTemp("", "stringsync-genstrings-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := append([]string{"-o", outDir}, files...)
	cmd := exec.CommandContext(ctx, genstringsPath, args...)
	var stderrBuf strings.Builder
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		if stderrBuf.Len() > 0 {
			log.Error().Str("stderr", stderrBuf.String()).Msg("genstrings output")
		}
		return nil, fmt.Errorf("genstrings failed: %w", err)
	}

	tables, err := filepath.Glob(filepath.Join(outDir, "*.strings"))
	if err != nil {
		return nil, err
	}
	sort.Strings(tables)
	for _, table := range tables {
		m, err := sf.ReadStrings(table)
		if err != nil {
			return nil, err
		}
		for _, r := range m {
			result.Add(r)
		}
	}
	return result, nil
}

// FilesByExtension groups files by their extension.
func FilesByExtension(files []string) map[string][]string {
	result := make(map[string][]string)
	for _, f := range files {
		ext := filepath.Ext(f)
		result[ext] = append(result[ext], f)
	}
	return result
}

// DescribeFiles returns a human-readable summary of the files found.
func DescribeFiles(files []string) string {
	byExt := FilesByExtension(files)
	var exts []string
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	var parts []string
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%d %s", len(byExt[ext]), ext))
	}
	return strings.Join(parts, ", ")
}
