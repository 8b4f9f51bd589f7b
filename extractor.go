package serpdump

// RuleSet is a versioned set of CSS selectors describing one results page
// template. Selectors other than Container are evaluated inside each
// container and only the first match is used.
type RuleSet struct {
	// Version identifies the rule set, e.g. "google-2024".
	Version string `yaml:"version"`

	// Container matches one node per result.
	Container string `yaml:"container"`

	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Snippet string `yaml:"snippet"`
	Icon    string `yaml:"icon"`

	// LinkAttr and IconAttr name the attributes read from the link and icon
	// nodes. Default to "href" and "src".
	LinkAttr string `yaml:"link_attr"`
	IconAttr string `yaml:"icon_attr"`

	// UnwrapRedirects replaces "/url?q=<target>" links with their target.
	UnwrapRedirects bool `yaml:"unwrap_redirects"`
}

// Validate returns an error if the rule set cannot be used for extraction.
func (r *RuleSet) Validate() error {
	if r.Version == "" {
		return Errorf(EINVALID, "rule set version required")
	}
	if r.Container == "" {
		return Errorf(EINVALID, "rule set %q: container selector required", r.Version)
	}
	return nil
}

// Extractor parses a results page into records.
// Extract never fails: unparsable or unexpected markup yields an empty slice.
// Records are returned in document order, one per matched container.
type Extractor interface {
	Extract(html string) []Record
}

// RuleExtractor is an Extractor that also reports which rule set it applied.
type RuleExtractor interface {
	Extractor

	// ExtractRules returns the records and the rule set used to extract
	// them, or a nil rule set when none matched the page.
	ExtractRules(html string) ([]Record, *RuleSet)
}
