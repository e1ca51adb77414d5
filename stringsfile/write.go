package stringsfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// extraMarker flags a record, through its comment, for the Extra section.
const extraMarker = "extra"

// Sections is a mapping split into the three output sections, each sorted
// by key.
type Sections struct {
	Translated    []Record
	Extra         []Record
	NotTranslated []Record
}

// Categorize places every record of m into exactly one section:
//   - Extra when its comment contains "extra", whatever its state;
//   - Translated when it is translated, or untranslated but listed in escape;
//   - NotTranslated otherwise.
func Categorize(m, escape Mapping) Sections {
	var s Sections
	for _, r := range m.Sorted() {
		_, escaped := escape[r.Key]
		switch {
		case strings.Contains(r.Comment, extraMarker):
			s.Extra = append(s.Extra, r)
		case !r.IsUntranslated() || escaped:
			s.Translated = append(s.Translated, r)
		default:
			s.NotTranslated = append(s.NotTranslated, r)
		}
	}
	return s
}

// Marshal serialises m as a categorized strings file. Comments are only
// written for Extra records. m is not modified.
func Marshal(m, escape Mapping) string {
	s := Categorize(m, escape)

	var b strings.Builder
	for _, r := range s.Translated {
		r.Comment = ""
		b.WriteString(r.String())
		b.WriteString("\n\n")
	}

	if len(s.Extra) > 0 {
		writeHeader(&b, HeaderExtra)
		for _, r := range s.Extra {
			b.WriteString(r.String())
			b.WriteString("\n\n")
		}
	}

	if len(s.NotTranslated) > 0 {
		writeHeader(&b, HeaderNotTranslated)
		for _, r := range s.NotTranslated {
			r.Comment = ""
			b.WriteString(r.String())
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func writeHeader(b *strings.Builder, header string) {
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString("\n\n\n")
}

// WriteCategorized writes m to path as a categorized strings file encoded
// with enc (UTF16 when zero), creating parent directories as needed.
func WriteCategorized(path string, m, escape Mapping, enc Encoding) error {
	if enc.IsZero() {
		enc = UTF16
	}
	return writeFile(path, Marshal(m, escape), enc)
}

func writeFile(path, text string, enc Encoding) error {
	data, err := enc.Encode(text)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
