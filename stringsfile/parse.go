package stringsfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// File is a parsed strings file.
type File struct {
	// Lines holds the original text lines in document order.
	Lines []string
	// Strings holds the records found in Lines, indexed by key.
	Strings Mapping
	// Encoding is the encoding the file was decoded with. Zero for
	// content parsed from memory or when no encoding matched.
	Encoding Encoding
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ReadFile reads and parses the strings file at path, resolving its
// encoding from encs (DefaultEncodings when nil).
//
// I/O errors are returned. A file that no encoding can decode is logged and
// yields an empty File with a nil error.
func ReadFile(path string, encs []Encoding) (*File, error) {
	if encs == nil {
		encs = DefaultEncodings
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	logger := log.With().Str("path", path).Logger()

	text, enc, err := Decode(data, encs)
	if err != nil {
		logger.Error().Err(err).Msg("Cannot decode strings file")
		return &File{Strings: make(Mapping)}, nil
	}
	logger.Debug().Str("encoding", enc.Name).Msg("Decoded strings file")

	f := parse(text, logger)
	f.Encoding = enc
	return f, nil
}

// ReadStrings returns only the records of the strings file at path.
func ReadStrings(path string) (Mapping, error) {
	f, err := ReadFile(path, nil)
	if err != nil {
		return nil, err
	}
	return f.Strings, nil
}

// Parse parses decoded strings file content.
func Parse(text string) *File {
	return parse(text, log.Logger)
}

func parse(text string, logger zerolog.Logger) *File {
	f := &File{
		Lines:   splitLines(text),
		Strings: make(Mapping),
	}

	pending := ""
	for i, raw := range f.Lines {
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			pending = ""
			continue
		}

		if isHeader(trimmed) {
			continue
		}

		if comment, ok := ParseComment(trimmed); ok {
			if comment != NoComment {
				pending = comment
			}
			continue
		}

		r, ok := ParseRecord(trimmed)
		if !ok {
			logger.Warn().Int("line", i+1).Str("text", trimmed).Msg("Could not parse")
			continue
		}
		if r.Comment == "" {
			r.Comment = pending
		}
		f.Strings.Add(r)
	}

	return f
}

// isHeader reports whether line is one of the reserved section headers.
func isHeader(line string) bool {
	switch line {
	case HeaderExtra, HeaderNotTranslated, HeaderNewStrings:
		return true
	}
	return false
}

// splitLines splits text into lines, normalising Windows line endings and
// dropping the empty element after a final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
