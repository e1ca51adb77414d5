// Package config loads .stringsync.yaml project files.
//
// Settings are layered, later sources winning:
//
//  1. .stringsync.yaml in the project root
//  2. .env in the project root and the process environment (STRINGSYNC_*)
//  3. command-line flags (applied by the caller)
//
// Without a project file, Detect can fill in the strings file and source
// directories from the project layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/stringsync/stringsfile"
)

// FileName is the default project file name.
const FileName = ".stringsync.yaml"

// EnvFileName is the optional dotenv file read from the project root.
const EnvFileName = ".env"

// Output modes.
const (
	// ModeWrite regenerates the strings file with categorized sections.
	ModeWrite = "write"
	// ModeUpdate rewrites an existing strings file in place.
	ModeUpdate = "update"
)

// Environment variables that override project file values.
const (
	EnvStringsFile = "STRINGSYNC_STRINGS_FILE"
	EnvReference   = "STRINGSYNC_REFERENCE"
	EnvEscape      = "STRINGSYNC_ESCAPE"
	EnvEncoding    = "STRINGSYNC_ENCODING"
	EnvMode        = "STRINGSYNC_MODE"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the .stringsync.yaml structure.
type File struct {
	// StringsFile is the strings file to generate or update.
	StringsFile string `yaml:"strings_file,omitempty"`
	// Sources are directories scanned for strings.
	Sources []string `yaml:"sources,omitempty"`
	// Extensions of scanned files (default ".lg").
	Extensions []string `yaml:"extensions,omitempty"`
	// Reference is a translation export supplying values for scanned keys.
	Reference string `yaml:"reference,omitempty"`
	// Escape is a strings file listing keys that may stay untranslated.
	Escape string `yaml:"escape,omitempty"`
	// Encoding of the written file: "utf16" (default) or "utf8".
	Encoding string `yaml:"encoding,omitempty"`
	// Mode is "write" (default) or "update".
	Mode string `yaml:"mode,omitempty"`
	// Genstrings also runs genstrings on Objective-C/Swift sources.
	Genstrings bool `yaml:"genstrings,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadFile loads .stringsync.yaml from rootDir.
// Returns nil if no project file exists.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// Load builds the effective settings for rootDir: the project file (if
// any), then .env and environment overrides. Defaults are applied and the
// result validated; relative paths are left as written.
func Load(rootDir string) (*File, error) {
	envPath := filepath.Join(rootDir, EnvFileName)
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", envPath, err)
	}

	f, err := LoadFile(rootDir)
	if err != nil {
		return nil, err
	}
	if f == nil {
		log.Debug().Str("root", rootDir).Msg("No project file, using defaults")
		f = &File{}
	}

	f.ApplyEnv()
	f.ApplyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ApplyEnv overrides fields with non-empty STRINGSYNC_* variables.
func (f *File) ApplyEnv() {
	for env, field := range map[string]*string{
		EnvStringsFile: &f.StringsFile,
		EnvReference:   &f.Reference,
		EnvEscape:      &f.Escape,
		EnvEncoding:    &f.Encoding,
		EnvMode:        &f.Mode,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*field = v
		}
	}
}

// ApplyDefaults fills empty fields.
func (f *File) ApplyDefaults() {
	if f.Mode == "" {
		f.Mode = ModeWrite
	}
	if f.Encoding == "" {
		f.Encoding = stringsfile.UTF16.Name
	}
}

// Validate checks the mode and encoding names.
func (f *File) Validate() error {
	switch f.Mode {
	case ModeWrite, ModeUpdate:
	default:
		return fmt.Errorf("unknown mode %q (valid: %s, %s)", f.Mode, ModeWrite, ModeUpdate)
	}
	if _, err := stringsfile.EncodingByName(f.Encoding); err != nil {
		return err
	}
	return nil
}

// OutputEncoding returns the encoding named by f.Encoding.
func (f *File) OutputEncoding() stringsfile.Encoding {
	enc, err := stringsfile.EncodingByName(f.Encoding)
	if err != nil {
		return stringsfile.UTF16
	}
	return enc
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// Resolve returns a copy of f whose relative paths are joined to rootDir.
func (f *File) Resolve(rootDir string) *File {
	out := *f
	out.StringsFile = resolvePath(rootDir, f.StringsFile)
	out.Reference = resolvePath(rootDir, f.Reference)
	out.Escape = resolvePath(rootDir, f.Escape)
	out.Sources = make([]string, len(f.Sources))
	for i, s := range f.Sources {
		out.Sources[i] = resolvePath(rootDir, s)
	}
	return &out
}

func resolvePath(rootDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}
