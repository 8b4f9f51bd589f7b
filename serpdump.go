// Package serpdump fetches a search engine results page for a keyword,
// extracts the organic results as structured records, and persists them as
// JSON, XML and CSV snapshots for later download.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, etree/, sqlite/).
package serpdump
