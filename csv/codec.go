// Package csv encodes result sets as CSV files with every field quoted.
package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/fwojciec/serpdump"
)

// Header is the first line of every encoded file.
const Header = "Title,Link,Snippet,Icon"

// Ensure Codec implements serpdump.Codec at compile time.
var _ serpdump.Codec = (*Codec)(nil)

// Codec encodes records as a header line followed by one line per record.
// Each field is double-quoted with embedded quotes doubled, and every run of
// line breaks inside a field is written as a single space. Absent and empty
// fields are both written as "" and decode as absent.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Format returns serpdump.FormatCSV.
func (c *Codec) Format() serpdump.Format {
	return serpdump.FormatCSV
}

// Encode returns the CSV file for records. Lines end with "\n".
func (c *Codec) Encode(records []serpdump.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')
	for _, r := range records {
		for i, f := range r.Fields() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeQuoted(&buf, f.String())
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

func writeQuoted(buf *bytes.Buffer, s string) {
	s = lineBreaks.ReplaceAllString(s, " ")
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(s, `"`, `""`))
	buf.WriteByte('"')
}

// Decode parses a file produced by Encode.
func (c *Codec) Decode(data []byte) ([]serpdump.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(serpdump.FieldNames)

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, serpdump.Errorf(serpdump.EINVALID, "missing csv header")
	}
	if err != nil {
		return nil, serpdump.Errorf(serpdump.EINVALID, "invalid csv results: %v", err)
	}
	if strings.Join(header, ",") != Header {
		return nil, serpdump.Errorf(serpdump.EINVALID, "unexpected csv header %q", strings.Join(header, ","))
	}

	records := []serpdump.Record{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, serpdump.Errorf(serpdump.EINVALID, "invalid csv results: %v", err)
		}
		records = append(records, serpdump.Record{
			Title:   field(row[0]),
			Link:    field(row[1]),
			Snippet: field(row[2]),
			Icon:    field(row[3]),
		})
	}
	return records, nil
}

func field(s string) serpdump.Optional {
	if s == "" {
		return serpdump.None()
	}
	return serpdump.Some(s)
}
