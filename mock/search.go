package mock

import (
	"context"

	"github.com/fwojciec/serpdump"
)

var _ serpdump.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of serpdump.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, keyword string) (*serpdump.SearchResult, error)
}

func (s *SearchService) Search(ctx context.Context, keyword string) (*serpdump.SearchResult, error) {
	return s.SearchFn(ctx, keyword)
}
