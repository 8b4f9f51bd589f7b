// Package slog provides logging decorators for serpdump services.
package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/serpdump"
)

// Ensure LoggingFetcher implements serpdump.Fetcher.
var _ serpdump.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with one log line per results page.
// Failed fetches are logged at warn level.
type LoggingFetcher struct {
	next   serpdump.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next serpdump.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the search host and query
// rather than the raw URL.
func (f *LoggingFetcher) Fetch(ctx context.Context, rawURL string) (html string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		host, query := describe(rawURL)
		f.logger.Log(ctx, level, "fetch",
			"host", host,
			"q", query,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, rawURL)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

func describe(rawURL string) (host, query string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Query().Get("q")
}
