package goquery_test

import (
	"testing"

	"github.com/fwojciec/serpdump"
	"github.com/fwojciec/serpdump/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	t.Run("prefers the first matching rule set", func(t *testing.T) {
		t.Parallel()

		// The sample page matches both div.tF2Cxc and div.g
		d := goquery.NewDetector(goquery.DefaultRuleSets()...)

		got := d.Detect(threeResults)

		require.NotNil(t, got)
		assert.Equal(t, goquery.VersionGoogle2024, got.Version)
	})

	t.Run("falls through to later rule sets", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector(goquery.DefaultRuleSets()...)

		got := d.Detect(`<div class="g"><h3>Legacy</h3></div>`)

		require.NotNil(t, got)
		assert.Equal(t, goquery.VersionGoogleLegacy, got.Version)
	})

	t.Run("returns nil when nothing matches", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector(goquery.DefaultRuleSets()...)

		assert.Nil(t, d.Detect(`<p>consent page</p>`))
	})
}

func TestDetector_Register(t *testing.T) {
	t.Parallel()

	t.Run("replaces rule set with same version in place", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector(goquery.DefaultRuleSets()...)
		override := goquery.Google2024()
		override.Snippet = "div.new-snippet"

		d.Register(override)

		assert.Equal(t, []string{goquery.VersionGoogle2024, goquery.VersionGoogleLegacy}, d.List())
		assert.Equal(t, "div.new-snippet", d.Get(goquery.VersionGoogle2024).Snippet)
	})

	t.Run("appends new versions", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector()
		d.Register(&serpdump.RuleSet{Version: "a", Container: "div.a"})
		d.Register(&serpdump.RuleSet{Version: "b", Container: "div.b"})

		assert.Equal(t, []string{"a", "b"}, d.List())
		assert.Nil(t, d.Get("c"))
	})
}

func TestValidateRuleSet(t *testing.T) {
	t.Parallel()

	t.Run("accepts built-in rule sets", func(t *testing.T) {
		t.Parallel()

		for _, rules := range goquery.DefaultRuleSets() {
			require.NoError(t, goquery.ValidateRuleSet(rules), rules.Version)
		}
	})

	t.Run("rejects invalid selector", func(t *testing.T) {
		t.Parallel()

		rules := goquery.Google2024()
		rules.Snippet = "div[[["

		err := goquery.ValidateRuleSet(rules)

		require.Error(t, err)
		assert.Equal(t, serpdump.EINVALID, serpdump.ErrorCode(err))
		assert.Contains(t, serpdump.ErrorMessage(err), "snippet")
	})

	t.Run("rejects missing container", func(t *testing.T) {
		t.Parallel()

		err := goquery.ValidateRuleSet(&serpdump.RuleSet{Version: "x"})

		assert.Equal(t, serpdump.EINVALID, serpdump.ErrorCode(err))
	})
}
