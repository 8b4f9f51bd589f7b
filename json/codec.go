// Package json encodes result sets as indented JSON arrays.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/serpdump"
)

// Ensure Codec implements serpdump.Codec at compile time.
var _ serpdump.Codec = (*Codec)(nil)

// Codec encodes records as an array of objects with the fields Title, Link,
// Snippet and Icon. Absent fields are null. Non-ASCII text and HTML
// metacharacters are written as-is.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Format returns serpdump.FormatJSON.
func (c *Codec) Format() serpdump.Format {
	return serpdump.FormatJSON
}

// Encode returns the indented JSON array for records.
// An empty or nil slice encodes as "[]".
func (c *Codec) Encode(records []serpdump.Record) ([]byte, error) {
	if records == nil {
		records = []serpdump.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON array produced by Encode.
func (c *Codec) Decode(data []byte) ([]serpdump.Record, error) {
	records := []serpdump.Record{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, serpdump.Errorf(serpdump.EINVALID, "invalid json results: %v", err)
	}
	if records == nil {
		records = []serpdump.Record{}
	}
	return records, nil
}
