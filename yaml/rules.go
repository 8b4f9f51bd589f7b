// Package yaml loads selector rule sets from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/fwojciec/serpdump"
	"gopkg.in/yaml.v3"
)

// File is the document layout of a rules file.
//
//	rulesets:
//	  - version: google-2024
//	    container: div.tF2Cxc
//	    title: h3
//	    link: a
type File struct {
	RuleSets []*serpdump.RuleSet `yaml:"rulesets"`
}

// LoadRuleSets reads and parses the rules file at path.
func LoadRuleSets(path string) ([]*serpdump.RuleSet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, serpdump.Errorf(serpdump.ENOTFOUND, "rules file %s does not exist", path)
	} else if err != nil {
		return nil, err
	}
	return ParseRuleSets(data)
}

// ParseRuleSets parses a rules document. Unknown keys, duplicate versions and
// rule sets missing a version or container are rejected with EINVALID.
func ParseRuleSets(data []byte) ([]*serpdump.RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, serpdump.Errorf(serpdump.EINVALID, "parsing rules: %v", err)
	}
	if len(file.RuleSets) == 0 {
		return nil, serpdump.Errorf(serpdump.EINVALID, "rules file defines no rule sets")
	}

	seen := make(map[string]bool, len(file.RuleSets))
	for i, rules := range file.RuleSets {
		if rules == nil {
			return nil, serpdump.Errorf(serpdump.EINVALID, "rule set %d is empty", i)
		}
		if err := rules.Validate(); err != nil {
			return nil, err
		}
		if seen[rules.Version] {
			return nil, serpdump.Errorf(serpdump.EINVALID, "duplicate rule set %q", rules.Version)
		}
		seen[rules.Version] = true
	}
	return file.RuleSets, nil
}
