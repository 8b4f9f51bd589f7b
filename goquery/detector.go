package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/serpdump"
)

// Detector identifies which results page template a document uses.
// Rule sets are checked in registration order; the first one whose
// container selector matches any node wins.
type Detector struct {
	rules []*serpdump.RuleSet
}

// NewDetector creates a Detector for the given rule sets.
func NewDetector(rules ...*serpdump.RuleSet) *Detector {
	return &Detector{rules: rules}
}

// Register appends a rule set. A rule set with the same version is replaced
// in place and keeps its precedence.
func (d *Detector) Register(rules *serpdump.RuleSet) {
	for i, r := range d.rules {
		if r.Version == rules.Version {
			d.rules[i] = rules
			return
		}
	}
	d.rules = append(d.rules, rules)
}

// Get returns the rule set registered under version, or nil.
func (d *Detector) Get(version string) *serpdump.RuleSet {
	for _, r := range d.rules {
		if r.Version == version {
			return r
		}
	}
	return nil
}

// List returns the registered versions in precedence order.
func (d *Detector) List() []string {
	versions := make([]string, 0, len(d.rules))
	for _, r := range d.rules {
		versions = append(versions, r.Version)
	}
	return versions
}

// Detect returns the first rule set whose container selector matches the
// document, or nil when none does.
func (d *Detector) Detect(html string) *serpdump.RuleSet {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return d.detect(doc)
}

func (d *Detector) detect(doc *goquery.Document) *serpdump.RuleSet {
	for _, r := range d.rules {
		// Invalid selectors match nothing.
		if doc.Find(r.Container).Length() > 0 {
			return r
		}
	}
	return nil
}
