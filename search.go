package serpdump

import "context"

// SearchResult is the outcome of one search request.
type SearchResult struct {
	Keyword string
	Records []Record

	// Snapshot is nil when nothing was persisted.
	Snapshot *Snapshot
}

// SearchService runs the fetch, extract and persist flow for a keyword.
type SearchService interface {
	// Search returns EINVALID for a blank keyword, EUNAVAILABLE when the page
	// cannot be fetched, and ENOMATCH when the page holds no results.
	// When persisting fails the extracted records are returned together with
	// an EPERSIST error.
	Search(ctx context.Context, keyword string) (*SearchResult, error)
}
