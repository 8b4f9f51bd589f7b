// Package prometheus provides Prometheus instrumentation for serpdump services.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/serpdump"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "serpdump"

// Metrics holds the search flow metrics.
type Metrics struct {
	Searches       *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	Records        prometheus.Histogram
	PersistFailed  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the metrics with a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return NewMetricsWith(reg, reg)
}

// NewMetricsWith registers the metrics with reg and serves them from g.
func NewMetricsWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total keyword searches by outcome code",
		}, []string{"code"}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time to fetch, extract and persist one search",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Records: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_records",
			Help:      "Records extracted per search",
			Buckets:   prometheus.LinearBuckets(0, 5, 11),
		}),
		PersistFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Artifacts that could not be persisted by format",
		}, []string{"format"}),
		gatherer: g,
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Ensure SearchService implements serpdump.SearchService.
var _ serpdump.SearchService = (*SearchService)(nil)

// SearchService wraps a SearchService with metrics.
type SearchService struct {
	next    serpdump.SearchService
	metrics *Metrics
}

// NewSearchService creates a new instrumented SearchService.
func NewSearchService(next serpdump.SearchService, metrics *Metrics) *SearchService {
	return &SearchService{next: next, metrics: metrics}
}

// Search delegates to the wrapped service and records the outcome.
func (s *SearchService) Search(ctx context.Context, keyword string) (result *serpdump.SearchResult, err error) {
	defer func(begin time.Time) {
		s.metrics.SearchDuration.Observe(time.Since(begin).Seconds())

		code := serpdump.ErrorCode(err)
		if code == "" {
			code = "ok"
		}
		s.metrics.Searches.WithLabelValues(code).Inc()

		if result != nil {
			s.metrics.Records.Observe(float64(len(result.Records)))
		}
		var pe *serpdump.PersistError
		if errors.As(err, &pe) {
			for format := range pe.Failures {
				s.metrics.PersistFailed.WithLabelValues(string(format)).Inc()
			}
		}
	}(time.Now())
	return s.next.Search(ctx, keyword)
}
