// Package lockfile implements stringsync.lock, a lock file that tracks
// MD5 checksums of the records written to each strings file by the last
// sync. Comparing a strings file against it shows which keys changed or
// appeared since then.
//
// The lock file is stored in the project root as stringsync.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	sf "github.com/minios-linux/stringsync/stringsfile"
)

// LockFileName is the default lock file name.
const LockFileName = "stringsync.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the stringsync.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // strings file -> key -> md5

	path string `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// TargetKey builds the lock file key of a strings file: its path relative
// to the project root, with forward slashes.
func TargetKey(rootDir, filePath string) string {
	if rel, err := filepath.Rel(rootDir, filePath); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(filePath)
}

// recordContent is what gets hashed for a record. The key is included so
// that identical values under different keys hash differently.
func recordContent(r sf.Record) string {
	return r.Key + "\x00" + r.Value
}

// Update records the checksums of every record in m for target.
func (lf *LockFile) Update(target string, m sf.Mapping) {
	if lf.Checksums[target] == nil {
		lf.Checksums[target] = make(map[string]string)
	}
	for key, r := range m {
		lf.Checksums[target][key] = Hash(recordContent(r))
	}
}

// Changed returns the keys of m that are new or whose value differs from
// the last recorded sync, sorted.
func (lf *LockFile) Changed(target string, m sf.Mapping) []string {
	existing := lf.Checksums[target]
	var changed []string
	for key, r := range m {
		if existing == nil || existing[key] != Hash(recordContent(r)) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

// Removed returns the recorded keys of target that m no longer has, sorted.
func (lf *LockFile) Removed(target string, m sf.Mapping) []string {
	var removed []string
	for key := range lf.Checksums[target] {
		if _, ok := m[key]; !ok {
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	return removed
}

// Clean removes entries from the lock file that are no longer present in
// the current set of keys. This prevents stale entries from accumulating.
func (lf *LockFile) Clean(target string, currentKeys []string) {
	existing := lf.Checksums[target]
	if existing == nil {
		return
	}

	valid := make(map[string]bool, len(currentKeys))
	for _, k := range currentKeys {
		valid[k] = true
	}

	for k := range existing {
		if !valid[k] {
			delete(existing, k)
		}
	}
}

// Record replaces the checksums of target with those of m.
func (lf *LockFile) Record(target string, m sf.Mapping) {
	lf.Update(target, m)
	lf.Clean(target, m.Keys())
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of targets and total keys in the lock file.
func (lf *LockFile) Stats() (targets, keys int) {
	targets = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Targets returns sorted list of target keys.
func (lf *LockFile) Targets() []string {
	targets := make([]string, 0, len(lf.Checksums))
	for t := range lf.Checksums {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	targets, keys := lf.Stats()
	if targets == 0 {
		return "empty"
	}

	var parts []string
	for _, t := range lf.Targets() {
		parts = append(parts, fmt.Sprintf("%s: %d keys", t, len(lf.Checksums[t])))
	}
	return fmt.Sprintf("%d files, %d keys (%s)", targets, keys, strings.Join(parts, ", "))
}
