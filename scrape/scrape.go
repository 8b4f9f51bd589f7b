// Package scrape provides the keyword search flow.
// It coordinates fetching the results page, extracting records and
// persisting them as a snapshot.
package scrape

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/serpdump"
)

// DefaultSearchURL is the results page endpoint queried for a keyword.
const DefaultSearchURL = "https://www.google.com/search"

// Ensure Scraper implements serpdump.SearchService at compile time.
var _ serpdump.SearchService = (*Scraper)(nil)

// Scraper runs the fetch, extract and persist flow.
type Scraper struct {
	Fetcher   serpdump.Fetcher
	Extractor serpdump.Extractor
	Exporter  serpdump.Exporter

	// SearchURL overrides DefaultSearchURL. The keyword is sent as the q
	// query parameter.
	SearchURL string
}

// URL returns the results page URL for keyword.
func (s *Scraper) URL(keyword string) string {
	base := s.SearchURL
	if base == "" {
		base = DefaultSearchURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + url.Values{"q": {keyword}}.Encode()
	}
	q := u.Query()
	q.Set("q", keyword)
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchHTML returns the raw results page for keyword.
// Returns EUNAVAILABLE if the page cannot be fetched.
func (s *Scraper) FetchHTML(ctx context.Context, keyword string) (string, error) {
	html, err := s.Fetcher.Fetch(ctx, s.URL(keyword))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", serpdump.Errorf(serpdump.EUNAVAILABLE, "fetching results for %q: %v", keyword, err)
	}
	return html, nil
}

// Search fetches the results page for keyword, extracts its records and
// replaces the stored snapshot with them.
func (s *Scraper) Search(ctx context.Context, keyword string) (*serpdump.SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, serpdump.Errorf(serpdump.EINVALID, "keyword required")
	}

	html, err := s.FetchHTML(ctx, keyword)
	if err != nil {
		return nil, err
	}

	result := &serpdump.SearchResult{
		Keyword: keyword,
		Records: s.Extractor.Extract(html),
	}
	if len(result.Records) == 0 {
		return result, serpdump.Errorf(serpdump.ENOMATCH, "no results found for %q", keyword)
	}

	snapshot, err := s.Exporter.Persist(ctx, result.Records)
	result.Snapshot = snapshot
	if err != nil {
		return result, err
	}

	return result, nil
}
