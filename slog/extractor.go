package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/serpdump"
)

// Ensure LoggingExtractor implements serpdump.Extractor.
var _ serpdump.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging of the applied rule set.
type LoggingExtractor struct {
	next   serpdump.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor. The rule set version
// is logged when next implements serpdump.RuleExtractor.
func NewLoggingExtractor(next serpdump.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the record count.
func (e *LoggingExtractor) Extract(html string) (records []serpdump.Record) {
	version := "(unknown)"
	defer func(begin time.Time) {
		e.logger.Info("extract",
			"rules", version,
			"bytes", len(html),
			"count", len(records),
			"duration", time.Since(begin),
		)
	}(time.Now())

	re, ok := e.next.(serpdump.RuleExtractor)
	if !ok {
		return e.next.Extract(html)
	}
	records, rules := re.ExtractRules(html)
	if rules != nil {
		version = rules.Version
	}
	return records
}
