// Package etree encodes result sets as XML documents using beevik/etree.
package etree

import (
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/fwojciec/serpdump"
)

// Element names of the document.
const (
	RootTag   = "ArrayOfSearchResult"
	RecordTag = "SearchResult"
)

// Ensure Codec implements serpdump.Codec at compile time.
var _ serpdump.Codec = (*Codec)(nil)

// Codec encodes records as one RecordTag element per record under RootTag.
// Absent fields are omitted; present empty fields are empty elements.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Format returns serpdump.FormatXML.
func (c *Codec) Format() serpdump.Format {
	return serpdump.FormatXML
}

// Encode returns the indented XML document for records.
func (c *Codec) Encode(records []serpdump.Record) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.CreateText("\n")

	root := doc.CreateElement(RootTag)
	for _, r := range records {
		root.CreateText("\n  ")
		el := root.CreateElement(RecordTag)
		written := 0
		for i, f := range r.Fields() {
			v, ok := f.Get()
			if !ok {
				continue
			}
			el.CreateText("\n    ")
			field := el.CreateElement(serpdump.FieldNames[i])
			if v != "" {
				field.SetText(sanitize(v))
			}
			written++
		}
		if written > 0 {
			el.CreateText("\n  ")
		}
	}
	if len(records) > 0 {
		root.CreateText("\n")
	}
	doc.CreateText("\n")

	// Write CR as &#xD; so parsers do not fold it into LF.
	doc.WriteSettings.CanonicalText = true
	return doc.WriteToBytes()
}

// Decode parses a document produced by Encode.
func (c *Codec) Decode(data []byte) ([]serpdump.Record, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, serpdump.Errorf(serpdump.EINVALID, "invalid xml results: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, serpdump.Errorf(serpdump.EINVALID, "empty xml results")
	}
	if root.Tag != RootTag {
		return nil, serpdump.Errorf(serpdump.EINVALID, "unexpected xml root %q", root.Tag)
	}

	records := []serpdump.Record{}
	for _, el := range root.SelectElements(RecordTag) {
		records = append(records, serpdump.Record{
			Title:   field(el, "Title"),
			Link:    field(el, "Link"),
			Snippet: field(el, "Snippet"),
			Icon:    field(el, "Icon"),
		})
	}
	return records, nil
}

func field(el *etree.Element, name string) serpdump.Optional {
	child := el.SelectElement(name)
	if child == nil {
		return serpdump.None()
	}
	return serpdump.Some(child.Text())
}

// sanitize replaces characters that XML 1.0 cannot represent, and invalid
// UTF-8, with U+FFFD.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if !isXMLChar(r) {
			return utf8.RuneError
		}
		return r
	}, s)
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
