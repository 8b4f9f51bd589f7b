package mock

import "github.com/fwojciec/serpdump"

var _ serpdump.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of serpdump.Extractor.
type Extractor struct {
	ExtractFn func(html string) []serpdump.Record
}

func (e *Extractor) Extract(html string) []serpdump.Record {
	return e.ExtractFn(html)
}

var _ serpdump.RuleExtractor = (*RuleExtractor)(nil)

// RuleExtractor is a mock implementation of serpdump.RuleExtractor.
type RuleExtractor struct {
	ExtractRulesFn func(html string) ([]serpdump.Record, *serpdump.RuleSet)
}

func (e *RuleExtractor) Extract(html string) []serpdump.Record {
	records, _ := e.ExtractRulesFn(html)
	return records
}

func (e *RuleExtractor) ExtractRules(html string) ([]serpdump.Record, *serpdump.RuleSet) {
	return e.ExtractRulesFn(html)
}
