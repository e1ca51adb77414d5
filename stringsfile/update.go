package stringsfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrMissingFile is returned by UpdateFile when the target does not exist.
var ErrMissingFile = errors.New("strings file does not exist")

// Update rewrites lines with the records of m:
//   - a record line whose key is in m is replaced by the new rendering;
//   - a record line whose key is not in m is removed;
//   - every other line is kept verbatim.
//
// Keys of m that never appeared are appended, sorted, under a
// "/* New strings */" header.
func Update(lines []string, m Mapping) []string {
	out := make([]string, 0, len(lines)+len(m)+2)
	seen := make(map[string]bool, len(m))

	for _, ln := range lines {
		old, ok := ParseRecord(strings.TrimSpace(ln))
		if !ok {
			out = append(out, ln)
			continue
		}
		r, ok := m[old.Key]
		if !ok {
			log.Debug().Str("key", old.Key).Msg("[removed]")
			continue
		}
		seen[old.Key] = true
		out = append(out, r.String())
	}

	var added []string
	for k := range m {
		if !seen[k] {
			added = append(added, k)
		}
	}
	if len(added) > 0 {
		sort.Strings(added)
		out = append(out, "", HeaderNewStrings)
		for _, k := range added {
			out = append(out, m[k].String())
		}
	}

	return out
}

// UpdateFile applies Update to the strings file at path and writes it back
// in the encoding and with the line endings it was read with. The file must
// already exist.
//
// When no encoding in encs (DefaultEncodings when nil) can decode the
// file, the problem is logged and the file is left untouched.
func UpdateFile(path string, m Mapping, encs []Encoding) error {
	if encs == nil {
		encs = DefaultEncodings
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrMissingFile, path, err)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	text, enc, err := Decode(data, encs)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Cannot decode strings file, not updating")
		return nil
	}

	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	out := Update(splitLines(text), m)
	return writeFile(path, strings.Join(out, eol)+eol, enc)
}
