// Package goquery implements results page extraction with CSS selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/serpdump"
)

var _ serpdump.RuleExtractor = (*Extractor)(nil)

// Extractor extracts records from results pages using the rule set picked
// by its Detector.
type Extractor struct {
	detector *Detector
}

// NewExtractor creates an Extractor that selects rule sets with detector.
func NewExtractor(detector *Detector) *Extractor {
	return &Extractor{detector: detector}
}

// Extract returns one record per result container in document order.
// Pages that no rule set matches yield an empty slice.
func (e *Extractor) Extract(html string) []serpdump.Record {
	records, _ := e.ExtractRules(html)
	return records
}

// ExtractRules is Extract that also returns the rule set the page matched.
func (e *Extractor) ExtractRules(html string) ([]serpdump.Record, *serpdump.RuleSet) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []serpdump.Record{}, nil
	}
	rules := e.detector.detect(doc)
	if rules == nil {
		return []serpdump.Record{}, nil
	}
	return extract(doc, rules), rules
}

// ExtractRecords extracts records from html with a fixed rule set.
func ExtractRecords(html string, rules *serpdump.RuleSet) []serpdump.Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []serpdump.Record{}
	}
	return extract(doc, rules)
}

func extract(doc *goquery.Document, rules *serpdump.RuleSet) []serpdump.Record {
	linkAttr := rules.LinkAttr
	if linkAttr == "" {
		linkAttr = "href"
	}
	iconAttr := rules.IconAttr
	if iconAttr == "" {
		iconAttr = "src"
	}

	records := []serpdump.Record{}
	doc.Find(rules.Container).Each(func(_ int, sel *goquery.Selection) {
		link := probeAttr(sel, rules.Link, linkAttr)
		if rules.UnwrapRedirects {
			if v, ok := link.Get(); ok {
				link = serpdump.Some(unwrapRedirect(v))
			}
		}

		records = append(records, serpdump.Record{
			Title:   probeText(sel, rules.Title),
			Link:    link,
			Snippet: probeText(sel, rules.Snippet),
			Icon:    probeAttr(sel, rules.Icon, iconAttr),
		})
	})
	return records
}

// probeText returns the trimmed text of the first node matching selector
// inside sel. A matched node with blank text is present but empty.
func probeText(sel *goquery.Selection, selector string) serpdump.Optional {
	if selector == "" {
		return serpdump.None()
	}
	node := sel.Find(selector).First()
	if node.Length() == 0 {
		return serpdump.None()
	}
	return serpdump.Some(strings.TrimSpace(node.Text()))
}

// probeAttr returns the trimmed attribute of the first node matching
// selector inside sel. A matched node without the attribute is present but
// empty.
func probeAttr(sel *goquery.Selection, selector, attr string) serpdump.Optional {
	if selector == "" {
		return serpdump.None()
	}
	node := sel.Find(selector).First()
	if node.Length() == 0 {
		return serpdump.None()
	}
	return serpdump.Some(strings.TrimSpace(node.AttrOr(attr, "")))
}

// unwrapRedirect returns the target of a "/url?q=<target>" redirect link,
// or href unchanged.
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := u.Query()
	for _, key := range []string{"q", "url"} {
		if target := q.Get(key); target != "" {
			return target
		}
	}
	return href
}
