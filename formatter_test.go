package doxindex_test

import (
	"testing"

	"github.com/fwojciec/doxindex"
	"github.com/stretchr/testify/assert"
)

func TestFormatEntries(t *testing.T) {
	t.Parallel()

	t.Run("formats single occurrence with context", func(t *testing.T) {
		t.Parallel()

		entries := []*doxindex.Entry{
			{Label: "FETCH", Occurrences: []doxindex.Occurrence{{URL: "../Readonly_8pm.html", Anchor: "a808", Context: "Readonly.pm"}}},
		}

		assert.Equal(t, "FETCH\n  FETCH (Readonly.pm) ../Readonly_8pm.html#a808", doxindex.FormatEntries(entries))
	})

	t.Run("uses display text when set", func(t *testing.T) {
		t.Parallel()

		entries := []*doxindex.Entry{
			{Label: "fi", Occurrences: []doxindex.Occurrence{
				{Text: "fi()", URL: "../a.html", Context: "a.sh"},
				{Text: "fi()", URL: "../b.html", Context: "b.sh"},
			}},
			{Label: "Find Package Modules", Occurrences: []doxindex.Occurrence{{URL: "../group.html"}}},
		}

		expected := "fi\n  fi() (a.sh) ../a.html\n  fi() (b.sh) ../b.html\n" +
			"Find Package Modules\n  Find Package Modules ../group.html"
		assert.Equal(t, expected, doxindex.FormatEntries(entries))
	})

	t.Run("returns empty string for no entries", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, doxindex.FormatEntries(nil))
	})
}
