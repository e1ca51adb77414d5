// Package stringsfile implements reading, writing and in-place updating of
// Apple .strings localization files.
//
// Format: one record per line, optionally preceded by a block comment line
// that describes it:
//
//	/* Title of the main window */
//	"Main Window" = "Fenêtre principale";
//	"Quit" = "Quitter"; /* inline comment */
//
// A record whose value equals its key is untranslated. Comments do not carry
// across blank lines, and the placeholder comment emitted by genstrings
// ("No comment provided by engineer.") is treated as no comment at all.
//
// Files are UTF-16 (with byte-order mark) or UTF-8; see Decode for how the
// encoding of an existing file is resolved.
package stringsfile

import (
	"fmt"
	"regexp"
	"sort"
)

// NoComment is the placeholder comment genstrings writes for strings that
// have no developer comment. It is never kept as a record comment.
const NoComment = "No comment provided by engineer."

// Reserved section headers. They must not appear as ordinary comments.
const (
	HeaderExtra         = "/*Extra*/"
	HeaderNotTranslated = "/*Not Translated*/"
	HeaderNewStrings    = "/* New strings */"
)

var (
	commentRe = regexp.MustCompile(`^\w*/\* (.+) \*/\w*$`)
	// A backslash escapes the next character, except that a key or value
	// may end with a lone backslash ("C:\").
	recordRe  = regexp.MustCompile(`^"((?:[^"\\]|\\.)+\\?|\\)" ?= ?"((?:[^"\\]|\\.)*\\?)";(?: /\* (.+) \*/)?$`)
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Record is a single key/value entry of a strings file.
type Record struct {
	// Key is the source-language string, unique within a Mapping.
	Key string
	// Value is the translation. Equal to Key while untranslated.
	Value string
	// Comment is the developer comment. Empty means no comment.
	Comment string
}

// IsUntranslated reports whether the record still carries its key as value.
func (r Record) IsUntranslated() bool {
	return r.Value == r.Key
}

// String renders the record as a strings file line.
func (r Record) String() string {
	if r.Comment != "" {
		return fmt.Sprintf(`"%s" = "%s"; /* %s */`, r.Key, r.Value, r.Comment)
	}
	return fmt.Sprintf(`"%s" = "%s";`, r.Key, r.Value)
}

// Mapping holds records indexed by key.
type Mapping map[string]Record

// Keys returns all keys in alphabetical order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sorted returns the records ordered by key.
func (m Mapping) Sorted() []Record {
	out := make([]Record, 0, len(m))
	for _, k := range m.Keys() {
		out = append(out, m[k])
	}
	return out
}

// Clone returns a shallow copy of m.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Add stores r under its key, replacing any previous record.
func (m Mapping) Add(r Record) {
	m[r.Key] = r
}

// ---------------------------------------------------------------------------
// Line grammar
// ---------------------------------------------------------------------------

// ParseComment extracts the text of a line that consists of a single block
// comment. It returns false if the line is anything else.
func ParseComment(line string) (string, bool) {
	m := commentRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseRecord parses a `"key" = "value";` line with an optional trailing
// block comment. Escape sequences inside key and value are kept verbatim.
func ParseRecord(line string) (Record, bool) {
	m := recordRe.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false
	}
	r := Record{Key: m[1], Value: m[2], Comment: m[3]}
	if r.Comment == NoComment {
		r.Comment = ""
	}
	return r, true
}
