// Package lgfile reads translation exports in the .lg XML format.
//
// An export is an arbitrary XML tree in which each translated string is a
// TranslationSet element holding the source text and its translation:
//
//	<Proj>
//	  <File>
//	    <TranslationSet>
//	      <base>Open File</base>
//	      <tran>Ouvrir le fichier</tran>
//	    </TranslationSet>
//	  </File>
//	</Proj>
//
// All other structure is ignored. Pairs whose text would corrupt a strings
// file line (a double quote or a newline) are skipped.
package lgfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/minios-linux/stringsync/stringsfile"
)

// ContainerTag is the element that holds one base/translation pair.
const ContainerTag = "TranslationSet"

const (
	baseTag = "base"
	tranTag = "tran"
)

// ---------------------------------------------------------------------------
// Tree model
// ---------------------------------------------------------------------------

// Node is an element of the export tree.
type Node struct {
	// Tag is the local element name.
	Tag string
	// Text is the character data before the first child element.
	Text string
	// Children in document order.
	Children []*Node
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses an export file into its element tree.
func ParseFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return root, nil
}

// Parse builds the element tree of an XML document. UTF-16 documents must
// start with a byte-order mark; other declared charsets are converted to
// UTF-8 while reading.
func Parse(data []byte) (*Node, error) {
	var r io.Reader = bytes.NewReader(data)
	charsetReader := charset.NewReaderLabel

	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		text, err := stringsfile.UTF16.Decode(data)
		if err != nil {
			return nil, err
		}
		r = strings.NewReader(text)
		// Already UTF-8, whatever the declaration says.
		charsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if n := stack[len(stack)-1]; len(n.Children) == 0 {
				n.Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

// Extract collects the base/translation pairs of every TranslationSet under
// root, in document order. Children of a TranslationSet are not searched
// for further sets. A nil root yields no records.
func Extract(root *Node) []stringsfile.Record {
	if root == nil {
		return nil
	}

	var out []stringsfile.Record
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}

		if n.Tag == ContainerTag {
			if r, ok := translationPair(n); ok {
				log.Debug().Str("key", r.Key).Msg("Added string")
				out = append(out, r)
			}
			continue
		}

		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// translationPair reads the base and tran children of a TranslationSet.
func translationPair(set *Node) (stringsfile.Record, bool) {
	var base, tran string
	for _, c := range set.Children {
		if c == nil {
			continue
		}
		switch c.Tag {
		case baseTag:
			base = c.Text
		case tranTag:
			tran = c.Text
		}
	}
	if !usable(base) || !usable(tran) {
		return stringsfile.Record{}, false
	}
	return stringsfile.Record{Key: base, Value: tran}, true
}

// usable reports whether s can be written as a strings file key or value.
func usable(s string) bool {
	return s != "" && !strings.ContainsAny(s, "\"\n")
}

// ReadFile returns the pairs of the export at path indexed by base text;
// a later set for the same base replaces an earlier one. A file that
// cannot be read or parsed is logged and yields an empty mapping.
func ReadFile(path string) stringsfile.Mapping {
	m := make(stringsfile.Mapping)
	root, err := ParseFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Cannot parse translation export")
		return m
	}
	for _, r := range Extract(root) {
		m.Add(r)
	}
	return m
}
