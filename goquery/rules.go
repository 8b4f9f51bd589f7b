package goquery

import (
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/serpdump"
)

// Built-in rule set versions.
const (
	VersionGoogle2024   = "google-2024"
	VersionGoogleLegacy = "google-legacy"
)

// Google2024 matches the desktop results template served to modern browsers.
func Google2024() *serpdump.RuleSet {
	return &serpdump.RuleSet{
		Version:   VersionGoogle2024,
		Container: "div.tF2Cxc",
		Title:     "h3",
		Link:      "a",
		Snippet:   "div.VwiC3b",
		Icon:      "img.XNo5Ab",
		LinkAttr:  "href",
		IconAttr:  "src",
	}
}

// GoogleLegacy matches the older "div.g" template, including the
// no-JavaScript variant whose links point at "/url?q=" redirects.
func GoogleLegacy() *serpdump.RuleSet {
	return &serpdump.RuleSet{
		Version:         VersionGoogleLegacy,
		Container:       "div.g",
		Title:           "h3",
		Link:            "a",
		Snippet:         "div.VwiC3b, span.st, div.s",
		Icon:            "img.XNo5Ab",
		LinkAttr:        "href",
		IconAttr:        "src",
		UnwrapRedirects: true,
	}
}

// DefaultRuleSets returns the built-in rule sets, newest first.
func DefaultRuleSets() []*serpdump.RuleSet {
	return []*serpdump.RuleSet{Google2024(), GoogleLegacy()}
}

// ValidateRuleSet checks required fields and that every selector compiles.
func ValidateRuleSet(rules *serpdump.RuleSet) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	selectors := []struct {
		name  string
		value string
	}{
		{"container", rules.Container},
		{"title", rules.Title},
		{"link", rules.Link},
		{"snippet", rules.Snippet},
		{"icon", rules.Icon},
	}
	for _, s := range selectors {
		if s.value == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(s.value); err != nil {
			return serpdump.Errorf(serpdump.EINVALID, "rule set %q: invalid %s selector %q: %v", rules.Version, s.name, s.value, err)
		}
	}
	return nil
}
