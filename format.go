package serpdump

import (
	"context"
	"strings"
	"time"
)

// Format identifies a serialized representation of a result set.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatCSV  Format = "csv"
)

// Formats returns all supported formats in canonical order.
func Formats() []Format {
	return []Format{FormatJSON, FormatXML, FormatCSV}
}

// ParseFormat returns the format for a case-insensitive name.
// Returns EINVALID for unknown names.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatJSON, FormatXML, FormatCSV:
		return f, nil
	}
	return "", Errorf(EINVALID, "unknown format %q", name)
}

// Filename returns the name of the file holding the artifact.
func (f Format) Filename() string {
	return "Results." + string(f)
}

// ContentType returns the MIME type served for the artifact.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXML:
		return "application/xml"
	case FormatCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}

// Encoder converts a result set to its serialized form.
// Encoding is deterministic and must succeed for every result set,
// including an empty one.
type Encoder interface {
	Format() Format
	Encode(records []Record) ([]byte, error)
}

// Decoder converts a serialized result set back to records.
type Decoder interface {
	Decode(data []byte) ([]Record, error)
}

// Codec is an Encoder that can also decode its own output.
type Codec interface {
	Encoder
	Decoder
}

// Artifact is the stored serialized form of a result set in one format.
type Artifact struct {
	Format     Format
	Content    []byte
	SnapshotID string

	// Hash is the hex xxHash of Content as recorded by the store. Empty when
	// the store does not keep one.
	Hash string

	// WrittenAt is when the store last replaced the artifact. Zero when
	// unknown.
	WrittenAt time.Time
}

// Snapshot describes the most recently persisted result set.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	Count     int

	// Hashes holds the content hash of each artifact that was written.
	Hashes map[Format]string
}

// ArtifactStore holds the artifacts of a single snapshot.
// Implementations guard the snapshot so that a reader never observes a
// partially written artifact.
type ArtifactStore interface {
	// Replace writes the artifacts as the new snapshot, replacing the previous
	// content of each format. Returns *PersistError listing the formats that
	// could not be written.
	Replace(ctx context.Context, artifacts []*Artifact) error

	// Read returns the stored artifact for a format.
	// Returns ENOTFOUND if the format was never written.
	Read(ctx context.Context, format Format) (*Artifact, error)
}

// Exporter persists result sets.
type Exporter interface {
	// Persist encodes records in every format and replaces the stored snapshot.
	Persist(ctx context.Context, records []Record) (*Snapshot, error)
}

// ArtifactGateway exposes persisted artifacts for download.
type ArtifactGateway interface {
	// Fetch returns the most recently persisted artifact verbatim.
	// Returns ENOTFOUND if nothing was persisted for the format.
	Fetch(ctx context.Context, format Format) (*Artifact, error)
}
