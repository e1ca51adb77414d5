package stringsfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownEncoding is returned when none of the candidate encodings can
// decode a file.
var ErrUnknownEncoding = errors.New("cannot determine encoding")

// Encoding is one candidate text encoding for strings files.
type Encoding struct {
	// Name is the short name used in config files and flags.
	Name string

	decoder encoding.Encoding
	encoder encoding.Encoding
	accept  func(data []byte) error
}

var (
	// UTF16 requires a byte-order mark on input and writes a
	// little-endian one on output, as Xcode and genstrings do.
	UTF16 = Encoding{
		Name:    "utf16",
		decoder: unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM),
		encoder: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
		accept:  acceptUTF16,
	}
	// UTF8 strips an optional UTF-8 byte-order mark and rejects invalid
	// byte sequences. Output carries no BOM.
	UTF8 = Encoding{
		Name:    "utf8",
		decoder: unicode.UTF8BOM,
		encoder: unicode.UTF8,
		accept:  acceptUTF8,
	}
)

// DefaultEncodings is the order in which encodings are tried on read.
var DefaultEncodings = []Encoding{UTF16, UTF8}

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
)

// EncodingByName looks up a built-in encoding. Accepts "utf16", "utf-16",
// "utf8" and "utf-8" in any case.
func EncodingByName(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf16", "utf-16":
		return UTF16, nil
	case "utf8", "utf-8":
		return UTF8, nil
	}
	return Encoding{}, fmt.Errorf("unsupported encoding %q (want utf16 or utf8)", name)
}

// IsZero reports whether e is the zero Encoding.
func (e Encoding) IsZero() bool { return e.Name == "" }

// Decode converts data in this encoding to a UTF-8 string.
func (e Encoding) Decode(data []byte) (string, error) {
	if e.accept != nil {
		if err := e.accept(data); err != nil {
			return "", err
		}
	}
	out, err := e.decoder.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts s to this encoding.
func (e Encoding) Encode(s string) ([]byte, error) {
	out, err := e.encoder.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding as %s: %w", e.Name, err)
	}
	return out, nil
}

// Decode tries each encoding in encs in order and returns the text from the
// first one that decodes data cleanly. When all fail, the returned error
// wraps ErrUnknownEncoding together with every individual failure.
func Decode(data []byte, encs []Encoding) (string, Encoding, error) {
	var errs []error
	names := make([]string, 0, len(encs))
	for _, enc := range encs {
		names = append(names, enc.Name)
		text, err := enc.Decode(data)
		if err == nil {
			return text, enc, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", enc.Name, err))
	}
	return "", Encoding{}, fmt.Errorf("%w among %s: %w",
		ErrUnknownEncoding, strings.Join(names, ", "), errors.Join(errs...))
}

// acceptUTF16 rejects input the x/text decoder would silently repair:
// a missing byte-order mark, an odd length or an unpaired surrogate.
func acceptUTF16(data []byte) error {
	var order binary.ByteOrder
	switch {
	case bytes.HasPrefix(data, bomUTF16LE):
		order = binary.LittleEndian
	case bytes.HasPrefix(data, bomUTF16BE):
		order = binary.BigEndian
	default:
		return errors.New("missing UTF-16 byte-order mark")
	}
	if len(data)%2 != 0 {
		return errors.New("truncated UTF-16 data")
	}

	units := data[2:]
	for i := 0; i < len(units); i += 2 {
		u := order.Uint16(units[i:])
		switch {
		case isHighSurrogate(u):
			if i+4 > len(units) || !isLowSurrogate(order.Uint16(units[i+2:])) {
				return fmt.Errorf("unpaired surrogate at byte %d", i+2)
			}
			i += 2
		case isLowSurrogate(u):
			return fmt.Errorf("unpaired surrogate at byte %d", i+2)
		}
	}
	return nil
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u <= 0xDBFF
}

func isLowSurrogate(u uint16) bool {
	return u >= 0xDC00 && u <= 0xDFFF
}

func acceptUTF8(data []byte) error {
	if !utf8.Valid(bytes.TrimPrefix(data, bomUTF8)) {
		return errors.New("invalid UTF-8 data")
	}
	return nil
}
