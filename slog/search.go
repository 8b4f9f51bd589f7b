package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpdump"
)

// Ensure LoggingSearchService implements serpdump.SearchService.
var _ serpdump.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with logging.
type LoggingSearchService struct {
	next   serpdump.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next serpdump.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// Search delegates to the wrapped service and logs the outcome.
func (s *LoggingSearchService) Search(ctx context.Context, keyword string) (result *serpdump.SearchResult, err error) {
	defer func(begin time.Time) {
		var count int
		var snapshot string
		if result != nil {
			count = len(result.Records)
			if result.Snapshot != nil {
				snapshot = result.Snapshot.ID
			}
		}
		s.logger.Info("search",
			"keyword", keyword,
			"count", count,
			"snapshot", snapshot,
			"code", serpdump.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, keyword)
}
