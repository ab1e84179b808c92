package doxindex_test

import (
	"net/url"
	"testing"

	"github.com/fwojciec/doxindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitScope(t *testing.T) {
	t.Parallel()

	t.Run("splits display text from context", func(t *testing.T) {
		t.Parallel()

		text, context := doxindex.SplitScope("fi", "fi():\u00a0basistest-cron.sh")

		assert.Equal(t, "fi()", text)
		assert.Equal(t, "basistest-cron.sh", context)
	})

	t.Run("uses label as text when there is no separator", func(t *testing.T) {
		t.Parallel()

		text, context := doxindex.SplitScope("force", "updatefile.force()")

		assert.Equal(t, "force", text)
		assert.Equal(t, "updatefile.force()", context)
	})
}

func TestOccurrence_Scope(t *testing.T) {
	t.Parallel()

	for _, scope := range []string{"fi():\u00a0basistest.sh", "basis::argparse::ArgumentParser", "", "fi():\u00a0"} {
		text, context := doxindex.SplitScope("fi", scope)
		occ := doxindex.Occurrence{Text: text, Context: context}
		assert.Equal(t, scope, occ.Scope("fi"))
	}

	t.Run("keeps display text without context", func(t *testing.T) {
		t.Parallel()

		occ := doxindex.Occurrence{Text: "fi()"}
		text, context := doxindex.SplitScope("fi", occ.Scope("fi"))

		assert.Equal(t, "fi()", text)
		assert.Empty(t, context)
	})

	t.Run("keeps a context holding the separator", func(t *testing.T) {
		t.Parallel()

		occ := doxindex.Occurrence{Text: "fi", Context: "a:\u00a0b"}
		text, context := doxindex.SplitScope("fi", occ.Scope("fi"))

		assert.Equal(t, "fi", text)
		assert.Equal(t, "a:\u00a0b", context)
	})
}

func TestOccurrence_Target(t *testing.T) {
	t.Parallel()

	u, anchor := doxindex.SplitTarget("../Readonly_8pm.html#a808ba7d5")
	assert.Equal(t, "../Readonly_8pm.html", u)
	assert.Equal(t, "a808ba7d5", anchor)

	occ := doxindex.Occurrence{URL: u, Anchor: anchor}
	assert.Equal(t, "../Readonly_8pm.html#a808ba7d5", occ.Target())

	occ = doxindex.Occurrence{URL: "../group__CMakeFindModules.html"}
	assert.Equal(t, "../group__CMakeFindModules.html", occ.Target())
}

func TestOccurrence_Resolve(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://docs.example.com/apidoc/latest/search/all_66.js")
	require.NoError(t, err)

	occ := doxindex.Occurrence{URL: "../Readonly_8pm.html", Anchor: "a808"}
	resolved, err := occ.Resolve(base)
	require.NoError(t, err)

	assert.Equal(t, "https://docs.example.com/apidoc/latest/Readonly_8pm.html#a808", resolved.String())
}

func TestEntry_Validate(t *testing.T) {
	t.Parallel()

	valid := doxindex.Entry{Key: "fail", Label: "fail", Occurrences: []doxindex.Occurrence{{URL: "../classJTap.html"}}}
	require.NoError(t, valid.Validate())

	missingURL := doxindex.Entry{Key: "fail", Label: "fail", Occurrences: []doxindex.Occurrence{{Context: "JTap"}}}
	err := missingURL.Validate()
	assert.Equal(t, doxindex.EMALFORMED, doxindex.ErrorCode(err))
	assert.Contains(t, doxindex.ErrorMessage(err), "target URL required")
}
