package serpdump

import (
	"bytes"
	"encoding/json"
)

// Optional is a text value that may be absent.
// The zero value is absent, which is distinct from a present empty string.
type Optional struct {
	value   string
	present bool
}

// Some returns a present value.
func Some(s string) Optional {
	return Optional{value: s, present: true}
}

// None returns an absent value.
func None() Optional {
	return Optional{}
}

// Get returns the value and whether it is present.
func (o Optional) Get() (string, bool) {
	return o.value, o.present
}

// Present reports whether the value is present.
func (o Optional) Present() bool {
	return o.present
}

// String returns the value, or an empty string when absent.
func (o Optional) String() string {
	return o.value
}

// MarshalJSON encodes an absent value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(o.value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes null as an absent value.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*o = Optional{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Some(s)
	return nil
}

// Record is one extracted search result.
// Every field is independently optional; a record with all fields absent is
// still a valid result.
type Record struct {
	Title   Optional
	Link    Optional
	Snippet Optional
	Icon    Optional
}

// Fields returns the record's fields in canonical column order.
func (r Record) Fields() [4]Optional {
	return [4]Optional{r.Title, r.Link, r.Snippet, r.Icon}
}

// IsEmpty reports whether every field is absent.
func (r Record) IsEmpty() bool {
	return !r.Title.present && !r.Link.present && !r.Snippet.present && !r.Icon.present
}

// FieldNames are the canonical field names in column order.
var FieldNames = [4]string{"Title", "Link", "Snippet", "Icon"}
