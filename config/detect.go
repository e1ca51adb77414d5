package config

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are never searched during detection.
var skipDirs = map[string]bool{
	".git":        true,
	".hg":         true,
	".svn":        true,
	"Pods":        true,
	"Carthage":    true,
	"DerivedData": true,
	"build":       true,
}

// preferredTables lists the strings files picked first, in order.
var preferredTables = []string{
	filepath.Join("Base.lproj", "Localizable.strings"),
	filepath.Join("en.lproj", "Localizable.strings"),
}

// Project holds what Detect found under a project root.
type Project struct {
	// StringsFiles are the *.strings files inside *.lproj directories.
	StringsFiles []string
	// SourceDirs are the directories that contain translation exports.
	SourceDirs []string
}

// Detect walks rootDir looking for strings tables and translation exports.
func Detect(rootDir string) (*Project, error) {
	tables := make(map[string]bool)
	sources := make(map[string]bool)

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if path != rootDir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".strings":
			if strings.HasSuffix(filepath.Dir(path), ".lproj") {
				tables[path] = true
			}
		case ".lg":
			sources[filepath.Dir(path)] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Project{
		StringsFiles: sortedKeys(tables),
		SourceDirs:   sortedKeys(sources),
	}, nil
}

// DefaultStringsFile picks the strings file to sync: Base.lproj or
// en.lproj Localizable.strings when present, otherwise the first found.
func (p *Project) DefaultStringsFile() string {
	for _, pref := range preferredTables {
		for _, f := range p.StringsFiles {
			if strings.HasSuffix(f, string(filepath.Separator)+pref) || f == pref {
				return f
			}
		}
	}
	if len(p.StringsFiles) > 0 {
		return p.StringsFiles[0]
	}
	return ""
}

// Fill sets the strings file and sources of f from p where f leaves them
// empty.
func (f *File) Fill(p *Project) {
	if p == nil {
		return
	}
	if f.StringsFile == "" {
		f.StringsFile = p.DefaultStringsFile()
	}
	if len(f.Sources) == 0 {
		f.Sources = p.SourceDirs
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
